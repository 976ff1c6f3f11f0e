package track

import (
	"path/filepath"
	"strings"
)

// Track is the metadata for a single audio item selected in the host player.
type Track struct {
	ID         string
	Title      string
	Artists    []string
	Album      string
	Duration   int // seconds
	FilePath   string
	CoverArtID string
}

// DisplayTitle returns the title to show on a now-playing surface.
// Falls back to the file name (without extension) for untagged files.
func (t *Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	base := filepath.Base(t.FilePath)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." {
		return "Unknown Track"
	}
	return base
}

// DisplayArtist returns the joined artist names, or empty if untagged.
func (t *Track) DisplayArtist() string {
	return strings.Join(t.Artists, ", ")
}

func (t *Track) HasCoverArt() bool {
	return t.CoverArtID != ""
}
