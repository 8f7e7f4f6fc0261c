package model

import (
	"fmt"
	"sync"
)

// DoorStatus is the wire-exact, bitmask-like door status byte, per
// spec.md 3/6.
type DoorStatus byte

const (
	DoorStatusLocked       DoorStatus = 0x00
	DoorStatusNotDefined   DoorStatus = 0x01
	DoorStatusCycling      DoorStatus = 0x02
	DoorStatusSDIFailure   DoorStatus = 0x04
	DoorStatusNotInstalled DoorStatus = 0x08
	DoorStatusDiagnostic   DoorStatus = 0x10
	DoorStatusLearn        DoorStatus = 0x20
	DoorStatusSecured      DoorStatus = 0x40
	DoorStatusUnlocked     DoorStatus = 0x80
	DoorStatusUnknown      DoorStatus = 0xFF
)

var doorStatusNames = map[DoorStatus]string{
	DoorStatusLocked:       "Locked",
	DoorStatusNotDefined:   "Not Defined",
	DoorStatusCycling:      "Cycling",
	DoorStatusSDIFailure:   "SDI Failure",
	DoorStatusNotInstalled: "Not Installed",
	DoorStatusDiagnostic:   "Diagnostic Mode",
	DoorStatusLearn:        "Learn Mode",
	DoorStatusSecured:      "Secured",
	DoorStatusUnlocked:     "Unlocked",
	DoorStatusUnknown:      "Unknown",
}

func (s DoorStatus) String() string {
	if n, ok := doorStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(s))
}

// Door is an access-controlled door point.
type Door struct {
	ID   int
	Name string

	mu     sync.RWMutex
	status DoorStatus

	StatusObserver Observable
}

// NewDoor constructs a door with status Unknown.
func NewDoor(id int, name string) *Door {
	return &Door{ID: id, Name: name, status: DoorStatusUnknown}
}

func (d *Door) Status() DoorStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Door) SetStatus(s DoorStatus) {
	d.mu.Lock()
	changed := d.status != s
	d.status = s
	d.mu.Unlock()
	if changed {
		d.StatusObserver.Notify()
	}
}

// IsOpen reports whether the door reads Cycling or Unlocked, per spec.md 3.
func (d *Door) IsOpen() bool {
	s := d.Status()
	return s == DoorStatusCycling || s == DoorStatusUnlocked
}

// Reset returns the door to status Unknown.
func (d *Door) Reset() { d.SetStatus(DoorStatusUnknown) }

func (d *Door) String() string {
	return fmt.Sprintf("%s: %s", d.Name, d.Status())
}
