//go:build windows

// Package smtc implements the media-controls surface for Windows using
// the System Media Transport Controls, reached through smtc.dll.
package smtc

/*
#cgo CFLAGS: -I .
void btn_callback_cgo(int in);
void seek_callback_cgo(int in);
*/
import "C"

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/quailaudio/sysmedia/controls"
)

type (
	playbackState int
	button        int
)

const (
	// constants from smtc.h in github.com/supersonic-app/smtc-dll
	playbackStateStopped playbackState = 2
	playbackStatePlaying playbackState = 3
	playbackStatePaused  playbackState = 4

	buttonPlay     button = 0
	buttonPause    button = 1
	buttonStop     button = 2
	buttonPrevious button = 4
	buttonNext     button = 5

	artFileName = "nowplaying.jpg"
)

var _ controls.Surface = (*Surface)(nil)

// Surface drives the SMTC flyout through smtc.dll. Button and seek
// callbacks arrive over a cgo trampoline, so only one Surface may be
// initialized per process.
type Surface struct {
	dll      *windows.DLL
	cacheDir string

	title     string
	artist    string
	posMillis int
	durMillis int
	artPath   string

	onCommand func(controls.Command)
	onSeek    func(millis int)
}

// global recipient for callbacks from the DLL, to avoid passing Go
// pointers into C
var surfaceInstance *Surface

func New(cacheDir string) *Surface {
	return &Surface{cacheDir: cacheDir}
}

func (s *Surface) Init(parentWindow uintptr) error {
	if maj, _, _ := windows.RtlGetNtVersionNumbers(); maj < 10 {
		return errors.New("SMTC is not supported on Windows versions < 10")
	}
	if surfaceInstance != nil {
		return errors.New("SMTC surface already initialized")
	}

	dll, err := windows.LoadDLL("smtc.dll")
	if err != nil {
		return err
	}

	proc, err := dll.FindProc("InitializeForWindow")
	if err != nil {
		return err
	}

	hr, _, _ := proc.Call(parentWindow,
		uintptr(unsafe.Pointer(C.btn_callback_cgo)),
		uintptr(unsafe.Pointer(C.seek_callback_cgo)))
	if hr < 0 {
		return fmt.Errorf("InitializeForWindow failed with HRESULT=%d", hr)
	}

	s.dll = dll
	surfaceInstance = s
	return nil
}

func (s *Surface) Shutdown() {
	if s.dll == nil {
		return
	}
	if proc, err := s.dll.FindProc("Destroy"); err == nil {
		proc.Call()
	}
	s.dll.Release()
	s.dll = nil
	surfaceInstance = nil
	if s.artPath != "" {
		os.Remove(s.artPath)
		s.artPath = ""
	}
}

func (s *Surface) SeekingSupported() bool { return true }

func (s *Surface) OnCommand(cb func(controls.Command)) { s.onCommand = cb }

func (s *Surface) OnSeek(cb func(millis int)) { s.onSeek = cb }

func (s *Surface) SetPlaybackStatus(status controls.PlaybackStatus) {
	state := playbackStateStopped
	switch status {
	case controls.StatusPlaying:
		state = playbackStatePlaying
	case controls.StatusPaused:
		state = playbackStatePaused
	}
	if err := s.callProc("SetPlaybackState", uintptr(state)); err != nil {
		log.Printf("SMTC: error setting playback state: %v", err)
	}
}

func (s *Surface) SetPosition(millis int) {
	s.posMillis = millis
	s.pushPosition()
}

func (s *Surface) SetDuration(millis int) {
	s.durMillis = millis
	s.pushPosition()
}

func (s *Surface) SetTitle(title string) {
	s.title = title
	s.pushMetadata()
}

func (s *Surface) SetArtist(artist string) {
	s.artist = artist
	s.pushMetadata()
}

func (s *Surface) SetThumbnail(img image.Image) {
	path := filepath.Join(s.cacheDir, artFileName)
	if err := writeJpeg(img, path); err != nil {
		log.Printf("SMTC: error writing art file: %v", err)
		return
	}
	s.artPath = path
	s.pushThumbnailPath(path)
}

func (s *Surface) ClearThumbnail() {
	s.artPath = ""
	s.pushThumbnailPath("")
}

func (s *Surface) ClearMetadata() {
	s.title = ""
	s.artist = ""
	s.posMillis = 0
	s.durMillis = 0
	s.ClearThumbnail()
	s.pushMetadata()
	s.pushPosition()
}

func (s *Surface) SetEnabled(enabled bool) {
	var arg uintptr
	if enabled {
		arg = 1
	}
	if err := s.callProc("SetEnabled", arg); err != nil {
		log.Printf("SMTC: error setting enabled: %v", err)
	}
}

// The DLL shows the full transport button row whenever the surface is
// enabled; per-button availability is not separately controllable.
func (s *Surface) SetNextEnabled(bool)      {}
func (s *Surface) SetPreviousEnabled(bool)  {}
func (s *Surface) SetPlayPauseEnabled(bool) {}
func (s *Surface) SetStopEnabled(bool)      {}

func (s *Surface) UpdateDisplay() {
	s.pushMetadata()
	s.pushPosition()
	if s.artPath != "" {
		s.pushThumbnailPath(s.artPath)
	}
}

func (s *Surface) pushMetadata() {
	if s.dll == nil {
		return
	}
	utfTitle, err := windows.UTF16PtrFromString(s.title)
	if err != nil {
		return
	}
	utfArtist, err := windows.UTF16PtrFromString(s.artist)
	if err != nil {
		return
	}
	proc, err := s.dll.FindProc("SetMetadata")
	if err != nil {
		log.Printf("SMTC: %v", err)
		return
	}
	hr, _, _ := proc.Call(uintptr(unsafe.Pointer(utfTitle)), uintptr(unsafe.Pointer(utfArtist)))
	if hr < 0 {
		log.Printf("SMTC: SetMetadata failed with HRESULT=%d", hr)
	}
}

func (s *Surface) pushPosition() {
	if err := s.callProc("SetPosition", uintptr(s.posMillis), uintptr(s.durMillis)); err != nil {
		log.Printf("SMTC: error updating position: %v", err)
	}
}

func (s *Surface) pushThumbnailPath(path string) {
	if s.dll == nil {
		return
	}
	utfPath, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return
	}
	proc, err := s.dll.FindProc("SetThumbnailPath")
	if err != nil {
		log.Printf("SMTC: %v", err)
		return
	}
	hr, _, _ := proc.Call(uintptr(unsafe.Pointer(utfPath)))
	if hr < 0 {
		log.Printf("SMTC: SetThumbnailPath failed with HRESULT=%d", hr)
	}
}

func (s *Surface) callProc(name string, args ...uintptr) error {
	if s.dll == nil {
		return errors.New("SMTC DLL not available")
	}
	proc, err := s.dll.FindProc(name)
	if err != nil {
		return err
	}
	if hr, _, _ := proc.Call(args...); hr < 0 {
		return fmt.Errorf("%s failed with HRESULT=%d", name, hr)
	}
	return nil
}

//export btnCallback
func btnCallback(in int) {
	s := surfaceInstance
	if s == nil || s.onCommand == nil {
		return
	}
	switch button(in) {
	case buttonPlay:
		s.onCommand(controls.CommandPlay)
	case buttonPause:
		s.onCommand(controls.CommandPause)
	case buttonStop:
		s.onCommand(controls.CommandStop)
	case buttonPrevious:
		s.onCommand(controls.CommandPrevious)
	case buttonNext:
		s.onCommand(controls.CommandNext)
	}
}

//export seekCallback
func seekCallback(millis int) {
	if surfaceInstance != nil && surfaceInstance.onSeek != nil {
		surfaceInstance.onSeek(millis)
	}
}

func writeJpeg(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, nil)
}
