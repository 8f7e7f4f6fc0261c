package model

import (
	"fmt"
	"sync"
	"time"
)

// HistoryEvent is one append-only history log entry, per spec.md 3.
type HistoryEvent struct {
	ID        uint32
	Timestamp time.Time
	Message   string
}

// Log is the panel's append-only history event store. A decode failure is
// recorded as a synthetic event rather than dropped, and the log
// suppresses repeat failure logging until ResetFailureLatch is called on
// reconnect, per spec.md 4.5/4.9.
type Log struct {
	mu             sync.RWMutex
	events         []HistoryEvent
	failureLatched bool

	Observer Observable
}

// Events returns a snapshot of the recorded events, oldest first.
func (l *Log) Events() []HistoryEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]HistoryEvent, len(l.events))
	copy(out, l.events)
	return out
}

// LastEventID returns the highest recorded event id, or 0 if the log is
// empty (matching the reference implementation's last_event_id default).
func (l *Log) LastEventID() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return 0
	}
	return l.events[len(l.events)-1].ID
}

// Append records an event in order and notifies observers. Callers are
// responsible for ensuring ids are appended in ascending order, per the
// append-only invariant in spec.md 3.
func (l *Log) Append(ev HistoryEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	l.Observer.Notify()
}

// RecordParseError inserts a synthetic "parse error" event at id with the
// current wall clock, unless a parse error has already been recorded since
// the last ResetFailureLatch. Returns true if it logged (i.e. the caller
// should also emit a one-time warning).
func (l *Log) RecordParseError(id uint32, now time.Time, cause error) bool {
	l.mu.Lock()
	if l.failureLatched {
		l.mu.Unlock()
		return false
	}
	l.failureLatched = true
	l.events = append(l.events, HistoryEvent{
		ID:        id,
		Timestamp: now,
		Message:   fmt.Sprintf("parse error: %v", cause),
	})
	l.mu.Unlock()
	l.Observer.Notify()
	return true
}

// LatchFailure sets the decode-failure latch and reports whether it was
// the one to do so (i.e. no parse error has been recorded since the last
// ResetFailureLatch). Unlike RecordParseError it does not append a
// synthetic event, for callers that already have their own per-record
// placeholder, such as the polled history driver's batch events.
func (l *Log) LatchFailure() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failureLatched {
		return false
	}
	l.failureLatched = true
	return true
}

// ResetFailureLatch clears the decode-failure latch; called on reconnect.
func (l *Log) ResetFailureLatch() {
	l.mu.Lock()
	l.failureLatched = false
	l.mu.Unlock()
}
