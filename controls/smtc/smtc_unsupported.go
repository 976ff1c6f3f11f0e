//go:build !windows

package smtc

import (
	"errors"
	"image"

	"github.com/quailaudio/sysmedia/controls"
)

var _ controls.Surface = (*Surface)(nil)

var errUnsupported = errors.New("SMTC is not supported on this platform")

// Surface is an inert stand-in on non-Windows platforms: Init always
// fails, leaving the controls manager disabled.
type Surface struct{}

func New(cacheDir string) *Surface { return &Surface{} }

func (s *Surface) Init(parentWindow uintptr) error { return errUnsupported }

func (s *Surface) Shutdown() {}

func (s *Surface) SeekingSupported() bool { return false }

func (s *Surface) OnCommand(func(controls.Command)) {}

func (s *Surface) OnSeek(func(millis int)) {}

func (s *Surface) SetPlaybackStatus(controls.PlaybackStatus) {}

func (s *Surface) SetPosition(millis int) {}

func (s *Surface) SetDuration(millis int) {}

func (s *Surface) SetTitle(string) {}

func (s *Surface) SetArtist(string) {}

func (s *Surface) SetThumbnail(image.Image) {}

func (s *Surface) ClearThumbnail() {}

func (s *Surface) ClearMetadata() {}

func (s *Surface) SetEnabled(bool) {}

func (s *Surface) SetNextEnabled(bool) {}

func (s *Surface) SetPreviousEnabled(bool) {}

func (s *Surface) SetPlayPauseEnabled(bool) {}

func (s *Surface) SetStopEnabled(bool) {}

func (s *Surface) UpdateDisplay() {}
