package mpris

import (
	"image"
	"os"
	"strings"
	"testing"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/quailaudio/sysmedia/controls"
)

// The surface is exercised without a bus connection: Init is never
// called, so event emission is a no-op and only cached state changes.

func TestSurface_PlaybackStatusMapping(t *testing.T) {
	s := New("Test Player", "testplayer", t.TempDir())

	cases := []struct {
		push controls.PlaybackStatus
		want types.PlaybackStatus
	}{
		{controls.StatusPlaying, types.PlaybackStatusPlaying},
		{controls.StatusPaused, types.PlaybackStatusPaused},
		{controls.StatusStopped, types.PlaybackStatusStopped},
	}
	for _, c := range cases {
		s.SetPlaybackStatus(c.push)
		got, err := s.adapter.PlaybackStatus()
		if err != nil {
			t.Fatalf("PlaybackStatus: %v", err)
		}
		if got != c.want {
			t.Errorf("status %s mapped to %s, want %s", c.push, got, c.want)
		}
	}
}

func TestSurface_Metadata(t *testing.T) {
	s := New("Test Player", "testplayer", t.TempDir())

	md, err := s.adapter.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if string(md.TrackId) != noTrackObjectPath {
		t.Errorf("empty surface TrackId = %s, want NoTrack", md.TrackId)
	}

	s.SetTitle("Vertigo")
	s.SetArtist("Alpha")
	s.SetDuration(30_000)

	md, err = s.adapter.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if md.Title != "Vertigo" {
		t.Errorf("Title = %q", md.Title)
	}
	if len(md.Artist) != 1 || md.Artist[0] != "Alpha" {
		t.Errorf("Artist = %v", md.Artist)
	}
	if md.Length != 30_000_000 {
		t.Errorf("Length = %d microseconds, want 30000000", md.Length)
	}
	if string(md.TrackId) == noTrackObjectPath {
		t.Error("TrackId should identify the current track")
	}

	s.ClearMetadata()
	md, _ = s.adapter.Metadata()
	if md.Title != "" || string(md.TrackId) != noTrackObjectPath {
		t.Error("metadata not cleared")
	}
}

func TestSurface_CommandsGatedByEnabled(t *testing.T) {
	s := New("Test Player", "testplayer", t.TempDir())

	var got []controls.Command
	s.OnCommand(func(c controls.Command) { got = append(got, c) })

	s.adapter.Next() // disabled: dropped
	if len(got) != 0 {
		t.Fatal("command relayed while surface disabled")
	}

	s.SetEnabled(true)
	s.adapter.Next()
	s.adapter.Previous()
	s.adapter.PlayPause()
	s.adapter.Play()
	s.adapter.Pause()
	s.adapter.Stop()

	want := []controls.Command{
		controls.CommandNext, controls.CommandPrevious, controls.CommandPlayPause,
		controls.CommandPlay, controls.CommandPause, controls.CommandStop,
	}
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSurface_SeekRequests(t *testing.T) {
	s := New("Test Player", "testplayer", t.TempDir())
	s.SetEnabled(true)

	var seeks []int
	s.OnSeek(func(millis int) { seeks = append(seeks, millis) })

	s.SetPosition(10_000)

	// relative seek from MPRIS
	if err := s.adapter.Seek(types.Microseconds(5_000_000)); err != nil {
		t.Fatal(err)
	}
	if len(seeks) != 1 || seeks[0] != 15_000 {
		t.Errorf("seeks = %v, want [15000]", seeks)
	}

	// seeking before the start clamps to zero
	if err := s.adapter.Seek(types.Microseconds(-60_000_000)); err != nil {
		t.Fatal(err)
	}
	if len(seeks) != 2 || seeks[1] != 0 {
		t.Errorf("seeks = %v, want second seek clamped to 0", seeks)
	}

	// an absolute SetPosition targets only the current track
	s.SetTitle("Vertigo")
	if err := s.adapter.SetPosition("/some/other/track", 1_000_000); err != nil {
		t.Fatal(err)
	}
	if len(seeks) != 2 {
		t.Error("SetPosition for a stale track id must be ignored")
	}
	if err := s.adapter.SetPosition(s.curTrackPath, 1_000_000); err != nil {
		t.Fatal(err)
	}
	if len(seeks) != 3 || seeks[2] != 1_000 {
		t.Errorf("seeks = %v, want third seek at 1000ms", seeks)
	}
}

func TestSurface_ThumbnailArtURLPerTrack(t *testing.T) {
	s := New("Test Player", "testplayer", t.TempDir())
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	s.SetTitle("First Song")
	s.SetThumbnail(img)
	md1, err := s.adapter.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md1.ArtUrl, "file://") {
		t.Fatalf("ArtUrl = %q, want file:// URL", md1.ArtUrl)
	}
	if strings.Contains(md1.ArtUrl, " ") {
		t.Errorf("ArtUrl %q not escaped", md1.ArtUrl)
	}

	s.SetTitle("Second Song")
	s.SetThumbnail(img)
	md2, _ := s.adapter.Metadata()
	if md2.ArtUrl == md1.ArtUrl {
		t.Error("ArtUrl should change with the track so clients don't serve stale covers")
	}
	if _, err := os.Stat(s.artPath); err != nil {
		t.Errorf("current art file missing: %v", err)
	}
}

func TestSurface_Availability(t *testing.T) {
	s := New("Test Player", "testplayer", t.TempDir())

	if next, _ := s.adapter.CanGoNext(); next {
		t.Error("CanGoNext true before enabled")
	}
	s.SetNextEnabled(true)
	s.SetPreviousEnabled(true)
	s.SetPlayPauseEnabled(true)
	if next, _ := s.adapter.CanGoNext(); !next {
		t.Error("CanGoNext not mirrored")
	}
	if prev, _ := s.adapter.CanGoPrevious(); !prev {
		t.Error("CanGoPrevious not mirrored")
	}
	if play, _ := s.adapter.CanPlay(); !play {
		t.Error("CanPlay not mirrored")
	}
}
