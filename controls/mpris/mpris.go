// Package mpris implements the media-controls surface for Linux and BSD
// desktops as an org.mpris.MediaPlayer2 player object on the session bus.
package mpris

import (
	"encoding/base32"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/quailaudio/sysmedia/controls"
)

const (
	dbusTrackIDPrefix = "/io/quailaudio/SysMedia/Track/"
	noTrackObjectPath = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	artFileName       = "nowplaying.jpg"

	// a position change this large is published as a Seeked signal
	seekEmitThresholdMicros = 1_000_000
)

var (
	_ types.OrgMprisMediaPlayer2Adapter       = (*adapter)(nil)
	_ types.OrgMprisMediaPlayer2PlayerAdapter = (*adapter)(nil)
	_ controls.Surface                        = (*Surface)(nil)
)

var errNotSupported = errors.New("not supported")

// Surface serves the last values pushed by the controls manager to MPRIS
// clients, and converts MPRIS method calls into command/seek callbacks.
type Surface struct {
	playerName string
	cacheDir   string

	s       *server.Server
	evt     *events.EventHandler
	adapter *adapter
	connErr error

	enabled          bool
	status           controls.PlaybackStatus
	positionMicros   types.Microseconds
	durationMicros   types.Microseconds
	title            string
	artist           string
	artPath          string // empty for no thumbnail
	curTrackPath     string // empty for no track
	nextEnabled      bool
	previousEnabled  bool
	playPauseEnabled bool
	stopEnabled      bool

	onCommand func(controls.Command)
	onSeek    func(millis int)
}

// New creates a Surface registered on the bus under busName.
// playerName is the identity shown to MPRIS clients; thumbnail files are
// written under cacheDir.
func New(playerName, busName, cacheDir string) *Surface {
	s := &Surface{
		playerName: playerName,
		cacheDir:   cacheDir,
		connErr:    errors.New("not started"),
	}
	s.adapter = &adapter{s: s}
	s.s = server.NewServer(busName, s.adapter, s.adapter)
	s.evt = events.NewEventHandler(s.s)
	return s
}

// Init verifies the session bus is reachable and starts serving the MPRIS
// object. The parent window handle is unused on this platform.
func (s *Surface) Init(_ uintptr) error {
	if _, err := dbus.SessionBus(); err != nil {
		return fmt.Errorf("session bus unavailable: %w", err)
	}
	s.connErr = nil
	go func() {
		// exits early with err if the bus name cannot be claimed
		s.connErr = s.s.Listen()
	}()
	return nil
}

func (s *Surface) Shutdown() {
	if s.connErr == nil {
		s.s.Stop()
		s.connErr = errors.New("stopped")
	}
	if s.artPath != "" {
		os.Remove(s.artPath)
		s.artPath = ""
	}
}

func (s *Surface) SeekingSupported() bool { return true }

func (s *Surface) OnCommand(cb func(controls.Command)) { s.onCommand = cb }

func (s *Surface) OnSeek(cb func(millis int)) { s.onSeek = cb }

// Setters pushed by the controls manager.

func (s *Surface) SetPlaybackStatus(status controls.PlaybackStatus) {
	s.status = status
	s.emit(func() { s.evt.Player.OnPlayPause() })
}

func (s *Surface) SetPosition(millis int) {
	newPos := types.Microseconds(int64(millis) * 1000)
	jumped := absMicros(newPos-s.positionMicros) > seekEmitThresholdMicros
	s.positionMicros = newPos
	if jumped {
		s.emit(func() { s.evt.Player.OnSeek(newPos) })
	}
}

func (s *Surface) SetDuration(millis int) {
	s.durationMicros = types.Microseconds(int64(millis) * 1000)
	s.emit(func() { s.evt.Player.OnTitle() })
}

func (s *Surface) SetTitle(title string) {
	s.title = title
	s.refreshTrackPath()
	s.emit(func() { s.evt.Player.OnTitle() })
}

func (s *Surface) SetArtist(artist string) {
	s.artist = artist
	s.refreshTrackPath()
	s.emit(func() { s.evt.Player.OnTitle() })
}

func (s *Surface) SetThumbnail(img image.Image) {
	// per-track file names: clients cache art by URL, so reusing one
	// name would pin the first cover forever
	name := artFileName
	if id, ok := strings.CutPrefix(s.curTrackPath, dbusTrackIDPrefix); ok && id != "" {
		name = "art_" + id + ".jpg"
	}
	path := filepath.Join(s.cacheDir, name)
	if err := writeJpeg(img, path); err != nil {
		log.Printf("error writing MPRIS art file: %v", err)
		return
	}
	if s.artPath != "" && s.artPath != path {
		os.Remove(s.artPath)
	}
	s.artPath = path
	s.emit(func() { s.evt.Player.OnTitle() })
}

func (s *Surface) ClearThumbnail() {
	s.artPath = ""
	s.emit(func() { s.evt.Player.OnTitle() })
}

func (s *Surface) ClearMetadata() {
	s.title = ""
	s.artist = ""
	s.artPath = ""
	s.curTrackPath = ""
	s.positionMicros = 0
	s.durationMicros = 0
	s.emit(func() { s.evt.Player.OnTitle() })
}

func (s *Surface) SetEnabled(enabled bool) {
	s.enabled = enabled
	s.emit(func() { s.evt.Player.OnPlayPause() })
}

func (s *Surface) SetNextEnabled(enabled bool)      { s.nextEnabled = enabled }
func (s *Surface) SetPreviousEnabled(enabled bool)  { s.previousEnabled = enabled }
func (s *Surface) SetPlayPauseEnabled(enabled bool) { s.playPauseEnabled = enabled }
func (s *Surface) SetStopEnabled(enabled bool)      { s.stopEnabled = enabled }

func (s *Surface) UpdateDisplay() {
	s.emit(func() {
		s.evt.Player.OnTitle()
		s.evt.Player.OnPlayPause()
	})
}

// MPRIS metadata has no push channel for a track identity, so the object
// path is derived from the current title/artist pair.
func (s *Surface) refreshTrackPath() {
	if s.title == "" && s.artist == "" {
		s.curTrackPath = ""
		return
	}
	s.curTrackPath = dbusTrackIDPrefix + encodeTrackID(s.artist+"\x00"+s.title)
}

func (s *Surface) emit(f func()) {
	if s.connErr == nil {
		f()
	}
}

func (s *Surface) command(c controls.Command) error {
	if !s.enabled {
		return nil
	}
	if s.onCommand != nil {
		s.onCommand(c)
	}
	return nil
}

func (s *Surface) seekTo(target types.Microseconds) error {
	if !s.enabled || s.onSeek == nil {
		return nil
	}
	if target < 0 {
		target = 0
	}
	s.onSeek(int(int64(target) / 1000))
	return nil
}

// adapter answers go-mpris-server's pull-based interfaces from the
// surface's cached state.
type adapter struct {
	s *Surface
}

// OrgMprisMediaPlayer2Adapter implementation

func (a *adapter) Identity() (string, error) {
	return a.s.playerName, nil
}

func (a *adapter) CanQuit() (bool, error) { return false, nil }

func (a *adapter) Quit() error { return errNotSupported }

func (a *adapter) CanRaise() (bool, error) { return false, nil }

func (a *adapter) Raise() error { return errNotSupported }

func (a *adapter) HasTrackList() (bool, error) { return false, nil }

func (a *adapter) SupportedUriSchemes() ([]string, error) { return nil, nil }

func (a *adapter) SupportedMimeTypes() ([]string, error) { return nil, nil }

// OrgMprisMediaPlayer2PlayerAdapter implementation

func (a *adapter) Next() error { return a.s.command(controls.CommandNext) }

func (a *adapter) Previous() error { return a.s.command(controls.CommandPrevious) }

func (a *adapter) Pause() error { return a.s.command(controls.CommandPause) }

func (a *adapter) PlayPause() error { return a.s.command(controls.CommandPlayPause) }

func (a *adapter) Stop() error { return a.s.command(controls.CommandStop) }

func (a *adapter) Play() error { return a.s.command(controls.CommandPlay) }

func (a *adapter) Seek(offset types.Microseconds) error {
	// MPRIS seek command is relative to current position
	return a.s.seekTo(a.s.positionMicros + offset)
}

func (a *adapter) SetPosition(trackId string, position types.Microseconds) error {
	if trackId == a.s.curTrackPath {
		return a.s.seekTo(position)
	}
	return nil
}

func (a *adapter) OpenUri(uri string) error { return errNotSupported }

func (a *adapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch a.s.status {
	case controls.StatusPlaying:
		return types.PlaybackStatusPlaying, nil
	case controls.StatusPaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (a *adapter) LoopStatus() (types.LoopStatus, error) {
	// queue looping is owned by the host player and not exposed here
	return types.LoopStatusNone, nil
}

func (a *adapter) SetLoopStatus(types.LoopStatus) error { return errNotSupported }

func (a *adapter) Rate() (float64, error) { return 1, nil }

func (a *adapter) SetRate(float64) error { return errNotSupported }

func (a *adapter) Metadata() (types.Metadata, error) {
	s := a.s
	trackObjPath := noTrackObjectPath
	if s.curTrackPath != "" {
		trackObjPath = s.curTrackPath
	}
	var artists []string
	if s.artist != "" {
		artists = []string{s.artist}
	}
	var artURL string
	if s.artPath != "" {
		artURL = (&url.URL{Scheme: "file", Path: s.artPath}).String()
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(trackObjPath),
		Length:  s.durationMicros,
		Title:   s.title,
		Artist:  artists,
		ArtUrl:  artURL,
	}, nil
}

func (a *adapter) Volume() (float64, error) { return 1, nil }

func (a *adapter) SetVolume(float64) error { return errNotSupported }

func (a *adapter) Position() (int64, error) {
	return int64(a.s.positionMicros), nil
}

func (a *adapter) MinimumRate() (float64, error) { return 1, nil }

func (a *adapter) MaximumRate() (float64, error) { return 1, nil }

func (a *adapter) CanGoNext() (bool, error) { return a.s.nextEnabled, nil }

func (a *adapter) CanGoPrevious() (bool, error) { return a.s.previousEnabled, nil }

func (a *adapter) CanPlay() (bool, error) { return a.s.playPauseEnabled, nil }

func (a *adapter) CanPause() (bool, error) { return a.s.playPauseEnabled, nil }

func (a *adapter) CanSeek() (bool, error) { return true, nil }

func (a *adapter) CanControl() (bool, error) { return a.s.enabled, nil }

func encodeTrackID(id string) string {
	return base32.StdEncoding.WithPadding('0').EncodeToString([]byte(id))
}

func absMicros(m types.Microseconds) types.Microseconds {
	if m < 0 {
		return -m
	}
	return m
}

func writeJpeg(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, nil)
}
