package history

import (
	"fmt"
	"time"

	"github.com/patchwell/boschalarm/model"
)

// EmptyCursor is the sentinel cursor value that asks the panel "tell me
// the next id to be written, with an empty batch" — sent when no history
// has been loaded yet, per spec.md 4.5.
const EmptyCursor uint32 = 0xFFFFFFFF

// EventLookbackCount bounds how far back the first load reaches once the
// panel reports its next-to-write id, capping load time on a panel with a
// long history. Spec.md names the constant without pinning a value; 100
// is chosen as a reasonable bounded window and is not load-bearing for
// correctness, only for how much backlog a first connect recovers.
const EventLookbackCount = 100

// InitialCursor converts a Log's last known event id into the cursor
// value the first RAW_HISTORY request should carry: a fresh log (id 0)
// must start from EmptyCursor, not from id 0 itself, since 0 is not a
// valid "resume after this" marker on the wire.
func InitialCursor(lastEventID uint32) uint32 {
	if lastEventID == 0 {
		return EmptyCursor
	}
	return lastEventID
}

// Driver drives the polled-history pagination protocol described in
// spec.md 4.5: seed the cursor from the panel's reported next-id on the
// first empty reply, detect end-of-stream by a shrinking batch size, and
// guard against a timestamp regression (a sign of cursor wraparound).
type Driver struct {
	decoder      Decoder
	maxBatchSeen int
	seeded       bool
}

// NewDriver returns a pagination driver for the given dialect decoder.
func NewDriver(decoder Decoder) *Driver {
	return &Driver{decoder: decoder}
}

// Batch is the outcome of processing one RAW_HISTORY reply.
type Batch struct {
	Events     []model.HistoryEvent
	NextCursor uint32
	Done       bool
	// ParseErr is set if any record in this batch failed to decode. The
	// batch still returns successfully decoded events and synthetic
	// parse-error placeholders for the rest; callers latch a single
	// warning per connection rather than logging every failure.
	ParseErr error
}

// ProcessBatch parses one [count][start_id][records] reply. lastStored is
// the timestamp of the most recently stored event (zero if the log is
// empty), used for the regression guard.
func (d *Driver) ProcessBatch(count int, startID uint32, records []byte, lastStored time.Time) Batch {
	if count == 0 {
		if !d.seeded {
			d.seeded = true
			next := uint32(0)
			if startID > EventLookbackCount+1 {
				next = startID - EventLookbackCount - 1
			}
			return Batch{NextCursor: next}
		}
		return Batch{NextCursor: startID, Done: true}
	}
	d.seeded = true

	recLen := len(records) / count
	var events []model.HistoryEvent
	var parseErr error
	done := false
	for i := 0; i < count; i++ {
		id := startID + uint32(i) + 1
		rec := records[i*recLen : (i+1)*recLen]
		ev, err := d.decoder.DecodePolled(rec, id)
		if err != nil {
			parseErr = err
			events = append(events, model.HistoryEvent{
				ID:        id,
				Timestamp: time.Now(),
				Message:   fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		if !lastStored.IsZero() && ev.Timestamp.Before(lastStored) {
			done = true
			break
		}
		events = append(events, ev)
	}

	if count > d.maxBatchSeen {
		d.maxBatchSeen = count
	} else if count < d.maxBatchSeen {
		done = true
	}

	return Batch{
		Events:     events,
		NextCursor: startID + uint32(count),
		Done:       done,
		ParseErr:   parseErr,
	}
}
