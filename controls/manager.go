package controls

import (
	"image"
	"log"

	"github.com/quailaudio/sysmedia/player"
	"github.com/quailaudio/sysmedia/track"
)

// Manager wires a host media player to an OS media-controls surface.
// It pushes playback status, timeline, and track metadata out to the
// surface and relays inbound user commands back to the player.
//
// All bindings run on the host's event dispatch; the Manager does no
// locking of its own.
type Manager struct {
	surface Surface
	player  player.Controller
	artwork track.ArtworkSource
	lock    LockState

	inited       bool
	active       bool // audio playback started and not yet stopped
	hostDisabled bool // host turned the integration off; stays off until Enable

	lastStatus    PlaybackStatus
	hasLastStatus bool
	lastPosMillis int
	lastDurMillis int

	// held while a track with artwork is current, released on stop
	cachedThumbnail image.Image
	cancelArtWait   func()
}

// NewManager initializes the surface for the given parent window and
// establishes all bindings. If the surface fails to initialize the
// returned Manager is inert: the feature is simply unavailable, which is
// never fatal to the host application.
//
// artwork and lock may be nil, disabling thumbnails and lock handling.
func NewManager(parentWindow uintptr, surface Surface, pl player.Controller, artwork track.ArtworkSource, lock LockState) *Manager {
	m := &Manager{
		surface:       surface,
		player:        pl,
		artwork:       artwork,
		lock:          lock,
		lastPosMillis: -1,
		lastDurMillis: -1,
	}
	if err := surface.Init(parentWindow); err != nil {
		log.Printf("system media controls failed to init: %v", err)
		return m
	}
	m.inited = true

	pl.OnPlaying(m.handlePlaying)
	pl.OnPaused(func() {
		m.pushStatus(StatusPaused)
	})
	pl.OnStopped(m.handleStopped)
	pl.OnTrackChange(m.updateNowPlaying)

	if surface.SeekingSupported() {
		pl.OnPlayTimeUpdate(m.handlePlayTimeUpdate)
		pl.OnSeek(func() {
			st := pl.PlayerStatus()
			m.handlePlayTimeUpdate(st.TimePos, st.Duration)
		})
		surface.OnSeek(func(millis int) {
			if err := pl.SeekSeconds(float64(millis) / 1000); err != nil {
				log.Printf("media controls seek failed: %v", err)
			}
		})
	}

	surface.OnCommand(m.handleCommand)

	if lock != nil {
		lock.OnLockChange(m.handleLockChange)
	}

	return m
}

// Initialized reports whether the surface came up. An uninitialized
// Manager ignores all calls.
func (m *Manager) Initialized() bool {
	return m.inited
}

// Shutdown cancels any pending artwork wait and releases the surface.
func (m *Manager) Shutdown() {
	if !m.inited {
		return
	}
	m.stopArtWait()
	m.surface.Shutdown()
	m.inited = false
}

// Disable hides the surface without tearing it down (e.g. the host's
// settings toggled the integration off). The surface stays hidden across
// playback and lock transitions until Enable is called.
func (m *Manager) Disable() {
	m.hostDisabled = true
	if m.inited {
		m.surface.SetEnabled(false)
	}
}

// Enable re-shows the surface and re-publishes current track metadata,
// if a track is current.
func (m *Manager) Enable() {
	m.hostDisabled = false
	if !m.inited || m.player.NowPlaying() == nil {
		return
	}
	m.surface.SetEnabled(true)
	m.surface.UpdateDisplay()
	m.updateNowPlaying()
}

func (m *Manager) handlePlaying() {
	if !m.active {
		// start of audio playback
		m.active = true
		if !m.hostDisabled {
			m.surface.SetEnabled(true)
		}
		m.surface.SetNextEnabled(m.player.NextAvailable())
		m.surface.SetPreviousEnabled(m.player.PreviousAvailable())
		m.surface.SetPlayPauseEnabled(true)
		m.surface.SetStopEnabled(true)
		m.pushStatus(StatusPlaying)
		m.surface.UpdateDisplay()
		return
	}
	m.pushStatus(StatusPlaying)
}

func (m *Manager) handleStopped() {
	m.pushStatus(StatusStopped)
	m.active = false
	m.stopArtWait()
	m.cachedThumbnail = nil
	m.surface.ClearMetadata()
	m.surface.SetEnabled(false)
	m.lastPosMillis = -1
	m.lastDurMillis = -1
}

func (m *Manager) handlePlayTimeUpdate(curTime, totalTime float64) {
	pos := int(curTime * 1000)
	dur := int(totalTime * 1000)
	if pos != m.lastPosMillis {
		m.lastPosMillis = pos
		m.surface.SetPosition(pos)
	}
	if dur != m.lastDurMillis {
		m.lastDurMillis = dur
		m.surface.SetDuration(dur)
	}
}

// updateNowPlaying re-resolves and pushes title/artist/thumbnail for the
// current track. Any pending artwork wait is superseded.
func (m *Manager) updateNowPlaying() {
	m.stopArtWait()

	tr := m.player.NowPlaying()
	if tr == nil {
		return
	}

	m.surface.SetArtist(tr.DisplayArtist())
	m.surface.SetTitle(tr.DisplayTitle())

	if m.artwork == nil || !tr.HasCoverArt() {
		m.surface.ClearThumbnail()
		return
	}
	if img, ok := m.artwork.Thumbnail(tr.CoverArtID); ok {
		m.cachedThumbnail = img
		m.surface.SetThumbnail(img)
		return
	}
	coverID := tr.CoverArtID
	m.cancelArtWait = m.artwork.OnDownloadFinished(func() {
		img, ok := m.artwork.Thumbnail(coverID)
		if !ok {
			return // some other download finished; keep waiting
		}
		m.cachedThumbnail = img
		m.surface.SetThumbnail(img)
		m.stopArtWait()
	})
	m.surface.ClearThumbnail()
}

func (m *Manager) handleLockChange(locked bool) {
	if locked {
		if m.lock.HasActiveSession() {
			m.surface.SetEnabled(false)
		}
		return
	}
	if m.hostDisabled || m.player.NowPlaying() == nil {
		return
	}
	m.surface.SetEnabled(true)
	m.surface.UpdateDisplay()
	m.updateNowPlaying()
}

func (m *Manager) handleCommand(cmd Command) {
	var err error
	switch cmd {
	case CommandPlayPause:
		err = m.player.PlayPause()
	case CommandPlay:
		err = m.player.Play()
	case CommandPause:
		err = m.player.Pause()
	case CommandNext:
		err = m.player.SeekNext()
	case CommandPrevious:
		err = m.player.SeekBackOrPrevious()
	case CommandStop:
		err = m.player.Stop()
	default:
		log.Printf("unknown media controls command received: %v", cmd)
	}
	if err != nil {
		log.Printf("media controls command %s failed: %v", cmd, err)
	}
}

func (m *Manager) pushStatus(status PlaybackStatus) {
	if m.hasLastStatus && m.lastStatus == status {
		return
	}
	m.lastStatus = status
	m.hasLastStatus = true
	m.surface.SetPlaybackStatus(status)
}

func (m *Manager) stopArtWait() {
	if m.cancelArtWait != nil {
		m.cancelArtWait()
		m.cancelArtWait = nil
	}
}
