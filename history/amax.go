package history

import (
	"fmt"
	"strconv"

	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

// amaxEventCodeMask strips AMAX's high flag bits from the event-code
// field, per spec.md 4.9.
const amaxEventCodeMask = 0x1FF

type amaxDecoder struct {
	table FormatTable
}

// lookup tries the AMAX fallback-key chain in order: bare code, then
// code_{param1}, then code_zone, then code_keypad/dx2/dx3/b4 gated on
// param1's range, per spec.md 4.9 (grounded on history.py's
// AmaxHistory._check_history_key chain).
func (d *amaxDecoder) lookup(code int, firstParam, secondParam int) (string, bool) {
	try := func(suffix string) (string, bool) {
		key := strconv.Itoa(code) + suffix
		t, ok := d.table[key]
		return t, ok
	}
	if t, ok := try(""); ok {
		return t, true
	}
	if t, ok := try(fmt.Sprintf("_%d", firstParam)); ok {
		return t, true
	}
	if t, ok := try("_zone"); ok {
		return t, true
	}
	if firstParam <= 16 {
		if t, ok := try("_keypad"); ok {
			return t, true
		}
	}
	if firstParam <= 108 {
		if t, ok := try("_dx2"); ok {
			return t, true
		}
	}
	if firstParam == 150 || firstParam == 151 {
		if t, ok := try("_dx3"); ok {
			return t, true
		}
		if t, ok := try("_b4"); ok {
			return t, true
		}
	}
	return "", false
}

func (d *amaxDecoder) format(code, firstParam, secondParam int) string {
	template, ok := d.lookup(code, firstParam, secondParam)
	if !ok {
		return fmt.Sprintf("Unknown event %d", code)
	}
	return render(template, map[string]string{
		"param1": strconv.Itoa(firstParam),
		"param2": strconv.Itoa(secondParam),
	})
}

// DecodePolled parses a 9-byte AMAX polled record: two 16-bit LE
// timestamp words, a 16-bit LE first param, a 16-bit LE (masked) event
// code, and a 1-byte second param.
func (d *amaxDecoder) DecodePolled(record []byte, storedID uint32) (model.HistoryEvent, error) {
	if len(record) < 9 {
		return model.HistoryEvent{}, fmt.Errorf("history: amax polled record too short (%d bytes)", len(record))
	}
	cur := wire.NewCursor(record)
	word1 := cur.Uint16LE()
	word2 := cur.Uint16LE()
	firstParam := cur.Uint16LE()
	code := cur.Uint16LE() & amaxEventCodeMask
	secondParam := cur.Uint8()

	ts := timeFrom16x16LE(word1, word2)
	msg := d.format(int(code), int(firstParam), int(secondParam))
	return model.HistoryEvent{ID: storedID, Timestamp: ts, Message: msg}, nil
}

func (d *amaxDecoder) DecodeSubscription(record []byte) (model.HistoryEvent, error) {
	fields, err := parseSubscriptionFields(record)
	if err != nil {
		return model.HistoryEvent{}, err
	}
	word1 := uint16(fields.timestampWord >> 16)
	word2 := uint16(fields.timestampWord)
	ts := timeFrom16x16LE(word1, word2)

	code := int(fields.eventCode) & amaxEventCodeMask
	msg := d.format(code, int(fields.p1), int(fields.p2))
	return model.HistoryEvent{ID: fields.storedID, Timestamp: ts, Message: msg}, nil
}
