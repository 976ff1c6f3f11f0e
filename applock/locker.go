// Package applock provides the passcode-lock state that the media
// controls react to. The passcode itself is kept hashed in the system
// keyring.
package applock

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/zalando/go-keyring"
)

const keyringUser = "passcode"

var (
	ErrNoPasscode    = errors.New("no passcode set")
	ErrWrongPasscode = errors.New("wrong passcode")
)

// Locker tracks the application passcode-lock state and notifies
// listeners on transitions. Like the rest of the integration it is meant
// to be driven from the host's event dispatch.
type Locker struct {
	appName       string
	locked        bool
	activeSession bool

	onLockChange []func(locked bool)
}

func New(appName string) *Locker {
	return &Locker{appName: appName}
}

// OnLockChange registers a callback invoked whenever the lock state
// transitions.
func (l *Locker) OnLockChange(cb func(locked bool)) {
	l.onLockChange = append(l.onLockChange, cb)
}

func (l *Locker) IsLocked() bool { return l.locked }

// SetActiveSession records whether a user session is currently active.
func (l *Locker) SetActiveSession(active bool) { l.activeSession = active }

func (l *Locker) HasActiveSession() bool { return l.activeSession }

// SetPasscode stores a (hashed) passcode in the system keyring.
func (l *Locker) SetPasscode(code string) error {
	return keyring.Set(l.appName, keyringUser, hashPasscode(code))
}

// ClearPasscode removes the stored passcode and unlocks.
func (l *Locker) ClearPasscode() error {
	if err := keyring.Delete(l.appName, keyringUser); err != nil {
		return err
	}
	l.setLocked(false)
	return nil
}

func (l *Locker) HasPasscode() bool {
	_, err := keyring.Get(l.appName, keyringUser)
	return err == nil
}

// Lock engages the passcode lock. It is a no-op when no passcode is set.
func (l *Locker) Lock() {
	if !l.HasPasscode() {
		return
	}
	l.setLocked(true)
}

// Unlock verifies the passcode and disengages the lock.
func (l *Locker) Unlock(code string) error {
	stored, err := keyring.Get(l.appName, keyringUser)
	if err != nil {
		return ErrNoPasscode
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashPasscode(code))) != 1 {
		return ErrWrongPasscode
	}
	l.setLocked(false)
	return nil
}

func (l *Locker) setLocked(locked bool) {
	if l.locked == locked {
		return
	}
	l.locked = locked
	for _, cb := range l.onLockChange {
		cb(locked)
	}
}

func hashPasscode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
