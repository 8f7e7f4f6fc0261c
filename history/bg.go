package history

import (
	"fmt"
	"strconv"

	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

type bgDecoder struct {
	table FormatTable
}

func (d *bgDecoder) format(code, area, p1, p2, p3 int) string {
	key := strconv.Itoa(code)
	template, ok := d.table[key]
	if !ok {
		return fmt.Sprintf("Unknown event %d", code)
	}
	return render(template, map[string]string{
		"area":   strconv.Itoa(area),
		"param1": strconv.Itoa(p1),
		"param2": strconv.Itoa(p2),
		"param3": strconv.Itoa(p3),
	})
}

// DecodePolled parses a 14-byte B/G polled record: code, area, p1, p2, p3
// (all 16-bit BE), then the 32-bit BE packed timestamp, per spec.md 4.9.
func (d *bgDecoder) DecodePolled(record []byte, storedID uint32) (model.HistoryEvent, error) {
	if len(record) < 14 {
		return model.HistoryEvent{}, fmt.Errorf("history: bg polled record too short (%d bytes)", len(record))
	}
	cur := wire.NewCursor(record)
	code := cur.Uint16BE()
	area := cur.Uint16BE()
	p1 := cur.Uint16BE()
	p2 := cur.Uint16BE()
	p3 := cur.Uint16BE()
	timestamp := cur.Uint32BE()

	ts := timeFromBG32(timestamp, 0)
	msg := d.format(int(code), int(area), int(p1), int(p2), int(p3))
	return model.HistoryEvent{ID: storedID, Timestamp: ts, Message: msg}, nil
}

// DecodeSubscription parses the shared notification-group layout. Day and
// month carry a +1 bias relative to the polled encoding, per spec.md 4.9.
func (d *bgDecoder) DecodeSubscription(record []byte) (model.HistoryEvent, error) {
	fields, err := parseSubscriptionFields(record)
	if err != nil {
		return model.HistoryEvent{}, err
	}
	ts := timeFromBG32(fields.timestampWord, 1)
	msg := d.format(int(fields.eventCode), int(fields.area), int(fields.p1), int(fields.p2), int(fields.p3))
	return model.HistoryEvent{ID: fields.storedID, Timestamp: ts, Message: msg}, nil
}
