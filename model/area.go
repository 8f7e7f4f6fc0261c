package model

import (
	"fmt"
	"sync"

	"github.com/patchwell/boschalarm/wire"
)

// AreaStatus is the wire-exact area status byte, per spec.md 3/6.
type AreaStatus byte

const (
	AreaStatusUnknown               AreaStatus = 0x00
	AreaStatusAllOnAway             AreaStatus = 0x01
	AreaStatusPartOnInstant         AreaStatus = 0x02
	AreaStatusPartOnDelay           AreaStatus = 0x03
	AreaStatusDisarmed              AreaStatus = 0x04
	AreaStatusAllOnEntryDelay       AreaStatus = 0x05
	AreaStatusPartOnEntryDelay      AreaStatus = 0x06
	AreaStatusAllOnExitDelay        AreaStatus = 0x07
	AreaStatusPartOnExitDelay       AreaStatus = 0x08
	AreaStatusAllOnInstant          AreaStatus = 0x09
	AreaStatusStay1On               AreaStatus = 0x0A
	AreaStatusStay2On               AreaStatus = 0x0B
	AreaStatusAwayOn                AreaStatus = 0x0C
	AreaStatusAwayExitDelay         AreaStatus = 0x0D
	AreaStatusAwayEntryDelay        AreaStatus = 0x0E
)

var areaStatusNames = map[AreaStatus]string{
	AreaStatusUnknown:          "Unknown",
	AreaStatusAllOnAway:        "All On / Away Armed",
	AreaStatusPartOnInstant:    "Part On Instant",
	AreaStatusPartOnDelay:      "Part On Delay / Stay Armed",
	AreaStatusDisarmed:         "Disarmed",
	AreaStatusAllOnEntryDelay:  "All On Entry Delay / Away Armed Entry Delay",
	AreaStatusPartOnEntryDelay: "Part On Entry Delay / Stay Armed Entry Delay",
	AreaStatusAllOnExitDelay:   "All On Exit Delay / Away Armed Exit Delay",
	AreaStatusPartOnExitDelay:  "Part On Exit Delay / Stay Armed Exit Delay",
	AreaStatusAllOnInstant:     "All On Instant Armed",
	AreaStatusStay1On:          "Stay 1 On",
	AreaStatusStay2On:          "Stay 2 On",
	AreaStatusAwayOn:           "Away On",
	AreaStatusAwayExitDelay:    "Away Exit Delay",
	AreaStatusAwayEntryDelay:   "Away Entry Delay",
}

func (s AreaStatus) String() string {
	if n, ok := areaStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(s))
}

var (
	areaArming    = map[AreaStatus]bool{AreaStatusAllOnExitDelay: true, AreaStatusPartOnExitDelay: true, AreaStatusAwayExitDelay: true}
	areaPending   = map[AreaStatus]bool{AreaStatusAllOnEntryDelay: true, AreaStatusPartOnEntryDelay: true, AreaStatusAwayEntryDelay: true}
	areaPartArmed = map[AreaStatus]bool{AreaStatusPartOnInstant: true, AreaStatusPartOnDelay: true}
	areaAllArmed  = map[AreaStatus]bool{AreaStatusAllOnAway: true, AreaStatusAllOnInstant: true, AreaStatusAwayOn: true}
)

// AreaReady is the readiness enum reported alongside fault counts.
type AreaReady byte

const (
	AreaReadyNot  AreaReady = 0x00
	AreaReadyPart AreaReady = 0x01
	AreaReadyAll  AreaReady = 0x02
)

func (r AreaReady) String() string {
	switch r {
	case AreaReadyNot:
		return "Not Ready"
	case AreaReadyPart:
		return "Part Ready"
	case AreaReadyAll:
		return "All Ready"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(r))
	}
}

// Area is a logical grouping of points that arms/disarms together.
type Area struct {
	ID   int
	Name string

	mu      sync.RWMutex
	status  AreaStatus
	ready   AreaReady
	faults  int
	alarms  map[wire.AlarmPriority]bool

	StatusObserver Observable
	ReadyObserver  Observable
	AlarmObserver  Observable
}

// NewArea constructs an area with the given id/name, status Unknown and
// ready Not, matching the reference implementation's Area() defaults.
func NewArea(id int, name string) *Area {
	return &Area{
		ID:     id,
		Name:   name,
		status: AreaStatusUnknown,
		ready:  AreaReadyNot,
		alarms: make(map[wire.AlarmPriority]bool),
	}
}

// Status returns the area's current status.
func (a *Area) Status() AreaStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// SetStatus updates status and notifies observers if it changed.
func (a *Area) SetStatus(s AreaStatus) {
	a.mu.Lock()
	changed := a.status != s
	a.status = s
	a.mu.Unlock()
	if changed {
		a.StatusObserver.Notify()
	}
}

// Ready returns the readiness enum.
func (a *Area) Ready() AreaReady {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// Faults returns the non-negative fault count last reported for this area.
func (a *Area) Faults() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.faults
}

// SetReady updates readiness and fault count together, notifying observers.
func (a *Area) SetReady(ready AreaReady, faults int) {
	a.mu.Lock()
	a.ready = ready
	a.faults = faults
	a.mu.Unlock()
	a.ReadyObserver.Notify()
}

// Alarms returns the set of alarm priorities currently asserted for this
// area, in ascending order.
func (a *Area) Alarms() []wire.AlarmPriority {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []wire.AlarmPriority
	for _, p := range wire.AllAlarmPriorities {
		if a.alarms[p] {
			out = append(out, p)
		}
	}
	return out
}

// SetAlarm asserts or clears one priority's alarm flag, notifying
// observers.
func (a *Area) SetAlarm(priority wire.AlarmPriority, active bool) {
	a.mu.Lock()
	if active {
		a.alarms[priority] = true
	} else {
		delete(a.alarms, priority)
	}
	a.mu.Unlock()
	a.AlarmObserver.Notify()
}

// Reset returns the area to its post-disconnect state: status Unknown,
// ready Not with zero faults, and alarms cleared, per spec.md 3's
// invariant that reset clears alarms and forces ready back to Not.
func (a *Area) Reset() {
	a.mu.Lock()
	a.status = AreaStatusUnknown
	a.ready = AreaReadyNot
	a.faults = 0
	a.alarms = make(map[wire.AlarmPriority]bool)
	a.mu.Unlock()
	a.StatusObserver.Notify()
	a.ReadyObserver.Notify()
	a.AlarmObserver.Notify()
}

// Derived predicates, per spec.md 3.

func (a *Area) IsDisarmed() bool  { return a.Status() == AreaStatusDisarmed }
func (a *Area) IsArming() bool    { return areaArming[a.Status()] }
func (a *Area) IsPending() bool   { return areaPending[a.Status()] }
func (a *Area) IsPartArmed() bool { return areaPartArmed[a.Status()] }
func (a *Area) IsAllArmed() bool  { return areaAllArmed[a.Status()] }
func (a *Area) IsArmed() bool     { return a.IsPartArmed() || a.IsAllArmed() }

// IsTriggered reports whether the area is armed or pending and has at
// least one of the three alarm-triggering priorities asserted.
func (a *Area) IsTriggered() bool {
	if !(a.IsArmed() || a.IsPending()) {
		return false
	}
	for _, p := range a.Alarms() {
		if wire.TriggeringAlarmPriorities[p] {
			return true
		}
	}
	return false
}

func (a *Area) String() string {
	return fmt.Sprintf("%s: %s [%s] (%d)", a.Name, a.Status(), a.Ready(), a.Faults())
}
