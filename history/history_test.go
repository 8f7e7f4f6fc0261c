package history

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwell/boschalarm/capability"
)

func bgPolledRecord(code, area, p1, p2, p3 uint16, timestamp uint32) []byte {
	buf := make([]byte, 14)
	binary.BigEndian.PutUint16(buf[0:], code)
	binary.BigEndian.PutUint16(buf[2:], area)
	binary.BigEndian.PutUint16(buf[4:], p1)
	binary.BigEndian.PutUint16(buf[6:], p2)
	binary.BigEndian.PutUint16(buf[8:], p3)
	binary.BigEndian.PutUint32(buf[10:], timestamp)
	return buf
}

// TestBGDecode_S7 mirrors spec.md 8's scenario S7.
func TestBGDecode_S7(t *testing.T) {
	d := NewDecoder(capability.DialectBG, nil)
	ts := uint32((14 << 26) | (3 << 22) | (14 << 17) | (9 << 12) | (27 << 6) | 33)
	rec := bgPolledRecord(0x0013, 1, 5, 0, 0, ts)

	ev, err := d.DecodePolled(rec, 42)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), ev.ID)
	assert.Equal(t, "Alarm, Area: 1, Point: 5", ev.Message)
	assert.Equal(t, time.Date(2024, 3, 14, 9, 27, 33, 0, time.UTC), ev.Timestamp)
}

// TestDriverAssignsSequentialIDs verifies invariant 3: a batch of `count`
// events decodes to ids start_id+1 .. start_id+count.
func TestDriverAssignsSequentialIDs(t *testing.T) {
	d := NewDriver(NewDecoder(capability.DialectBG, nil))
	ts := uint32((14 << 26) | (3 << 22) | (14 << 17) | (9 << 12) | (27 << 6) | 33)
	records := append(bgPolledRecord(0x0013, 1, 5, 0, 0, ts), bgPolledRecord(0x0013, 2, 6, 0, 0, ts)...)

	batch := d.ProcessBatch(2, 100, records, time.Time{})
	require.NoError(t, batch.ParseErr)
	require.Len(t, batch.Events, 2)
	assert.Equal(t, uint32(101), batch.Events[0].ID)
	assert.Equal(t, uint32(102), batch.Events[1].ID)
	assert.Equal(t, uint32(102), batch.NextCursor)
}

// TestDriverSeedsCursorOnFirstEmptyReply mirrors scenario S6.
func TestDriverSeedsCursorOnFirstEmptyReply(t *testing.T) {
	d := NewDriver(NewDecoder(capability.DialectBG, nil))

	batch := d.ProcessBatch(0, 12345, nil, time.Time{})
	assert.False(t, batch.Done)
	assert.Equal(t, uint32(12345-EventLookbackCount-1), batch.NextCursor)

	batch2 := d.ProcessBatch(0, 12345, nil, time.Time{})
	assert.True(t, batch2.Done)
}

func TestDriverShrinkingBatchSignalsEndOfStream(t *testing.T) {
	d := NewDriver(NewDecoder(capability.DialectBG, nil))
	ts := uint32((14 << 26) | (3 << 22) | (14 << 17) | (9 << 12) | (27 << 6) | 33)
	two := append(bgPolledRecord(0x0013, 1, 1, 0, 0, ts), bgPolledRecord(0x0013, 1, 2, 0, 0, ts)...)
	one := bgPolledRecord(0x0013, 1, 3, 0, 0, ts)

	b1 := d.ProcessBatch(2, 0, two, time.Time{})
	assert.False(t, b1.Done)
	b2 := d.ProcessBatch(1, b1.NextCursor, one, time.Time{})
	assert.True(t, b2.Done)
}

func TestDriverDecodeFailureProducesParseErrorEventAndContinues(t *testing.T) {
	d := NewDriver(NewDecoder(capability.DialectBG, nil))
	// Two records, each shorter than the 14-byte minimum the BG decoder
	// requires, so both fail to decode but the batch still returns a
	// placeholder per offending id rather than aborting.
	records := make([]byte, 20) // len/count = 10 < 14

	batch := d.ProcessBatch(2, 0, records, time.Time{})
	require.Error(t, batch.ParseErr)
	require.Len(t, batch.Events, 2)
	assert.Contains(t, batch.Events[0].Message, "parse error")
	assert.Contains(t, batch.Events[1].Message, "parse error")
	assert.Equal(t, uint32(1), batch.Events[0].ID)
	assert.Equal(t, uint32(2), batch.Events[1].ID)
}

func TestBGUnknownCodeYieldsPlaceholderMessageNotError(t *testing.T) {
	d := NewDecoder(capability.DialectBG, nil)
	ts := uint32((14 << 26) | (3 << 22) | (14 << 17) | (9 << 12) | (27 << 6) | 33)
	rec := bgPolledRecord(0xFFFF, 1, 1, 0, 0, ts)

	ev, err := d.DecodePolled(rec, 1)
	require.NoError(t, err)
	assert.Equal(t, "Unknown event 65535", ev.Message)
}

func TestAmaxFallbackKeyChain(t *testing.T) {
	table := FormatTable{
		"5_zone": "Zone trouble {param1}",
	}
	d := &amaxDecoder{table: table}
	msg := d.format(5, 12, 0)
	assert.Equal(t, "Zone trouble 12", msg)

	unknown := d.format(999, 1, 2)
	assert.Equal(t, "Unknown event 999", unknown)
}

func TestInitialCursor(t *testing.T) {
	assert.Equal(t, EmptyCursor, InitialCursor(0))
	assert.EqualValues(t, 500, InitialCursor(500))
}
