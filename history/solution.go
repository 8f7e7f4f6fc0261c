package history

import (
	"fmt"
	"strconv"

	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

// solutionUsers maps the polled-record user code (second_param) to a
// display name, grounded on bosch_alarm_mode2/history.py's
// SolutionHistory.SOLUTION_USERS.
var solutionUsers = map[int]string{
	0:   "Quick",
	994: "PowerUp",
	995: "Telephone",
	997: "Schedule",
	998: "A-Link",
	999: "Installer",
}

func solutionUserName(code int) string {
	if n, ok := solutionUsers[code]; ok {
		return n
	}
	if code >= 1 && code <= 32 {
		return fmt.Sprintf("User %d", code)
	}
	return ""
}

type solutionDecoder struct {
	table FormatTable
}

// DecodePolled parses an 8-byte Solution polled record: two 16-bit LE
// timestamp words, a 16-bit LE first param, a 1-byte event code, a 1-byte
// second param.
func (d *solutionDecoder) DecodePolled(record []byte, storedID uint32) (model.HistoryEvent, error) {
	if len(record) < 8 {
		return model.HistoryEvent{}, fmt.Errorf("history: solution polled record too short (%d bytes)", len(record))
	}
	cur := wire.NewCursor(record)
	word1 := cur.Uint16LE()
	word2 := cur.Uint16LE()
	firstParam := cur.Uint16LE()
	eventCode := cur.Uint8()
	secondParam := cur.Uint8()

	ts := timeFrom16x16LE(word1, word2)
	key := strconv.Itoa(int(eventCode))
	template, ok := d.table[key]
	if !ok {
		return model.HistoryEvent{}, fmt.Errorf("history: unknown solution event code %s", key)
	}
	msg := render(template, map[string]string{
		"user":   solutionUserName(int(secondParam)),
		"param1": strconv.Itoa(int(firstParam)),
		"param2": strconv.Itoa(int(secondParam)),
	})
	return model.HistoryEvent{ID: storedID, Timestamp: ts, Message: msg}, nil
}

// DecodeSubscription parses the shared notification-group layout and
// formats the message the same way as DecodePolled, with the record's p1
// as param1 and its p2 as param2 and as the user code. The wire carries
// the same two-word timestamp packing as the polled format, just big-endian
// within the notification frame rather than little-endian.
func (d *solutionDecoder) DecodeSubscription(record []byte) (model.HistoryEvent, error) {
	fields, err := parseSubscriptionFields(record)
	if err != nil {
		return model.HistoryEvent{}, err
	}
	word1 := uint16(fields.timestampWord >> 16)
	word2 := uint16(fields.timestampWord)
	ts := timeFrom16x16LE(word1, word2)

	key := strconv.Itoa(int(fields.eventCode))
	template, ok := d.table[key]
	if !ok {
		return model.HistoryEvent{}, fmt.Errorf("history: unknown solution event code %s", key)
	}
	msg := render(template, map[string]string{
		"user":   solutionUserName(int(fields.p2)),
		"param1": strconv.Itoa(int(fields.p1)),
		"param2": strconv.Itoa(int(fields.p2)),
	})
	return model.HistoryEvent{ID: fields.storedID, Timestamp: ts, Message: msg}, nil
}
