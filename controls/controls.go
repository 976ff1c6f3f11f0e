package controls

import "image"

// PlaybackStatus is the tri-state playback summary shown on the
// OS now-playing surface.
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPaused
	StatusPlaying
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusPaused:
		return "Paused"
	case StatusPlaying:
		return "Playing"
	default:
		return "Stopped"
	}
}

// Command is a user transport command received from the OS surface.
type Command int

const (
	CommandPlayPause Command = iota
	CommandPlay
	CommandPause
	CommandNext
	CommandPrevious
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "Play"
	case CommandPause:
		return "Pause"
	case CommandNext:
		return "Next"
	case CommandPrevious:
		return "Previous"
	case CommandStop:
		return "Stop"
	default:
		return "PlayPause"
	}
}

// Surface is a platform-provided OS media-controls abstraction
// (MPRIS player object, Windows SMTC, ...). Implementations receive
// pushed state from the Manager and emit inbound user commands.
type Surface interface {
	// Init makes the surface available for the given parent window handle.
	// Must be called before any other method; an error means the surface
	// is unavailable on this system.
	Init(parentWindow uintptr) error

	SetPlaybackStatus(PlaybackStatus)
	SetPosition(millis int)
	SetDuration(millis int)
	SetTitle(title string)
	SetArtist(artist string)
	SetThumbnail(img image.Image)
	ClearThumbnail()

	// ClearMetadata resets title, artist, thumbnail, and timeline state.
	ClearMetadata()

	SetEnabled(bool)
	SetNextEnabled(bool)
	SetPreviousEnabled(bool)
	SetPlayPauseEnabled(bool)
	SetStopEnabled(bool)

	// UpdateDisplay asks the surface to re-publish its current state.
	UpdateDisplay()

	// SeekingSupported reports whether the surface can display a timeline
	// and emit seek requests.
	SeekingSupported() bool

	OnCommand(func(Command))
	OnSeek(func(millis int))

	Shutdown()
}

// LockState is the application passcode-lock collaborator.
type LockState interface {
	// OnLockChange registers a callback invoked when the app becomes
	// locked (true) or unlocked (false).
	OnLockChange(func(locked bool))

	// HasActiveSession reports whether a user session is active.
	HasActiveSession() bool
}
