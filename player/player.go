package player

import (
	"github.com/quailaudio/sysmedia/track"
)

// The playback state (Stopped, Paused, or Playing).
type State int

const (
	Stopped State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Paused:
		return "Paused"
	case Playing:
		return "Playing"
	default:
		return "Stopped"
	}
}

// The current status of the player.
// Includes playback state, current time, and total track time in seconds.
type Status struct {
	State    State
	TimePos  float64
	Duration float64
}

// Controller is the surface of the host media player consumed by the
// media-controls integration: status and queue queries, imperative
// transport controls, and push-style event registration.
type Controller interface {
	PlayerStatus() Status

	// NowPlaying returns the current track, or nil when nothing is queued
	// or playback is stopped.
	NowPlaying() *track.Track
	NextAvailable() bool
	PreviousAvailable() bool

	Play() error
	Pause() error
	PlayPause() error
	Stop() error
	SeekNext() error
	SeekBackOrPrevious() error

	// Seek to given absolute position in the current track by seconds.
	SeekSeconds(secs float64) error

	// Event API
	OnPlaying(func())
	OnPaused(func())
	OnStopped(func())
	OnSeek(func())
	OnTrackChange(func())
	OnPlayTimeUpdate(func(curTime, totalTime float64))
}

// CallbackHandler provides the event-registration half of Controller for
// host players to embed. Multiple listeners may register for each event.
type CallbackHandler struct {
	onPlaying        []func()
	onPaused         []func()
	onStopped        []func()
	onSeek           []func()
	onTrackChange    []func()
	onPlayTimeUpdate []func(float64, float64)
}

// Registers a callback which is invoked when the player transitions to the Playing state.
func (c *CallbackHandler) OnPlaying(cb func()) {
	c.onPlaying = append(c.onPlaying, cb)
}

// Registers a callback which is invoked when the player transitions to the Paused state.
func (c *CallbackHandler) OnPaused(cb func()) {
	c.onPaused = append(c.onPaused, cb)
}

// Registers a callback which is invoked when the player transitions to the Stopped state.
func (c *CallbackHandler) OnStopped(cb func()) {
	c.onStopped = append(c.onStopped, cb)
}

// Registers a callback which is invoked whenever a seek event occurs.
func (c *CallbackHandler) OnSeek(cb func()) {
	c.onSeek = append(c.onSeek, cb)
}

// Registers a callback which is invoked when the currently playing track
// changes, or when playback begins from the Stopped state.
func (c *CallbackHandler) OnTrackChange(cb func()) {
	c.onTrackChange = append(c.onTrackChange, cb)
}

// Registers a callback which is invoked periodically with the current and
// total play time, in seconds, while playback is active.
func (c *CallbackHandler) OnPlayTimeUpdate(cb func(curTime, totalTime float64)) {
	c.onPlayTimeUpdate = append(c.onPlayTimeUpdate, cb)
}

func (c *CallbackHandler) InvokeOnPlaying() {
	for _, cb := range c.onPlaying {
		cb()
	}
}

func (c *CallbackHandler) InvokeOnPaused() {
	for _, cb := range c.onPaused {
		cb()
	}
}

func (c *CallbackHandler) InvokeOnStopped() {
	for _, cb := range c.onStopped {
		cb()
	}
}

func (c *CallbackHandler) InvokeOnSeek() {
	for _, cb := range c.onSeek {
		cb()
	}
}

func (c *CallbackHandler) InvokeOnTrackChange() {
	for _, cb := range c.onTrackChange {
		cb()
	}
}

func (c *CallbackHandler) InvokeOnPlayTimeUpdate(curTime, totalTime float64) {
	for _, cb := range c.onPlayTimeUpdate {
		cb(curTime, totalTime)
	}
}
