package applock

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	keyring.MockInit()
	l := New("sysmedia-test")
	t.Cleanup(func() {
		keyring.Delete("sysmedia-test", keyringUser)
	})
	return l
}

func TestLocker_LockRequiresPasscode(t *testing.T) {
	l := newTestLocker(t)

	l.Lock()
	if l.IsLocked() {
		t.Error("locked without a passcode set")
	}

	if err := l.SetPasscode("1234"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	l.Lock()
	if !l.IsLocked() {
		t.Error("not locked after Lock with passcode set")
	}
}

func TestLocker_Unlock(t *testing.T) {
	l := newTestLocker(t)
	if err := l.SetPasscode("1234"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	l.Lock()

	if err := l.Unlock("9999"); !errors.Is(err, ErrWrongPasscode) {
		t.Errorf("Unlock with wrong passcode: err = %v, want ErrWrongPasscode", err)
	}
	if !l.IsLocked() {
		t.Error("unlocked by wrong passcode")
	}

	if err := l.Unlock("1234"); err != nil {
		t.Errorf("Unlock: %v", err)
	}
	if l.IsLocked() {
		t.Error("still locked after correct passcode")
	}
}

func TestLocker_UnlockWithoutPasscode(t *testing.T) {
	l := newTestLocker(t)
	if err := l.Unlock("1234"); !errors.Is(err, ErrNoPasscode) {
		t.Errorf("err = %v, want ErrNoPasscode", err)
	}
}

func TestLocker_NotifiesOnTransitionsOnly(t *testing.T) {
	l := newTestLocker(t)
	if err := l.SetPasscode("1234"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}

	var events []bool
	l.OnLockChange(func(locked bool) { events = append(events, locked) })

	l.Lock()
	l.Lock() // already locked, no event
	if err := l.Unlock("1234"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := l.Unlock("1234"); err != nil { // already unlocked, no event
		t.Fatalf("Unlock: %v", err)
	}

	want := []bool{true, false}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestLocker_ClearPasscodeUnlocks(t *testing.T) {
	l := newTestLocker(t)
	if err := l.SetPasscode("1234"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	l.Lock()

	if err := l.ClearPasscode(); err != nil {
		t.Fatalf("ClearPasscode: %v", err)
	}
	if l.IsLocked() {
		t.Error("still locked after passcode cleared")
	}
	if l.HasPasscode() {
		t.Error("passcode still present after ClearPasscode")
	}
}

func TestLocker_ActiveSession(t *testing.T) {
	l := newTestLocker(t)
	if l.HasActiveSession() {
		t.Error("new locker reports active session")
	}
	l.SetActiveSession(true)
	if !l.HasActiveSession() {
		t.Error("active session not recorded")
	}
}
