// Package history implements the three Mode 2 history-log dialects
// (Solution, AMAX, B/G), each a variant decoder selected once during
// capability negotiation, plus the polled-history pagination driver, per
// spec.md 4.5 and 4.9.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/patchwell/boschalarm/capability"
	"github.com/patchwell/boschalarm/model"
	"github.com/patchwell/boschalarm/wire"
)

// Decoder turns raw history bytes into model.HistoryEvent values. Polled
// and subscription records use different wire layouts (spec.md 4.9); a
// decoder implements both, since format-table lookup and timestamp bit
// layout are shared between them within one dialect.
type Decoder interface {
	// DecodePolled parses a single fixed-length polled record. storedID is
	// the event id to stamp on the resulting event (start_id + offset,
	// computed by the caller).
	DecodePolled(record []byte, storedID uint32) (model.HistoryEvent, error)
	// DecodeSubscription parses one notification-group history record
	// (the common 25+text_len layout) and returns its stored id
	// (event_id+1) alongside the event.
	DecodeSubscription(record []byte) (model.HistoryEvent, error)
}

// FormatTable maps an event-code key (and AMAX's suffixed variants) to a
// message template using {user}/{param1}/{param2}/{param3}/{area}
// placeholders. Spec.md 9 treats the full catalog as an external data
// table; callers load the published tables and pass them in. The package
// ships a minimal built-in default per dialect covering the scenario in
// spec.md 8 S7, not the full catalog.
type FormatTable map[string]string

func render(template string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// NewDecoder returns the Decoder for a negotiated history dialect.
func NewDecoder(dialect capability.HistoryDialect, table FormatTable) Decoder {
	switch dialect {
	case capability.DialectSolution:
		if table == nil {
			table = defaultSolutionFormat
		}
		return &solutionDecoder{table: table}
	case capability.DialectAmax:
		if table == nil {
			table = defaultAmaxFormat
		}
		return &amaxDecoder{table: table}
	default:
		if table == nil {
			table = defaultBGFormat
		}
		return &bgDecoder{table: table}
	}
}

var defaultSolutionFormat = FormatTable{
	"19": "Alarm, Area: {param1}, by {user}",
}

var defaultAmaxFormat = FormatTable{
	"19": "Alarm, Zone: {param1}",
}

var defaultBGFormat = FormatTable{
	"19": "Alarm, Area: {area}, Point: {param1}",
}

// subscriptionFields is the common notification-group history layout
// shared by every dialect, per spec.md 4.9.
type subscriptionFields struct {
	storedID      uint32
	eventCode     uint16
	area, p1, p2, p3 uint16
	timestampWord uint32
	text          string
}

func parseSubscriptionFields(record []byte) (subscriptionFields, error) {
	const minLen = 25
	if len(record) < minLen {
		return subscriptionFields{}, fmt.Errorf("history: subscription record too short (%d bytes)", len(record))
	}
	cur := wire.NewCursor(record)
	eventID := cur.Uint32BE()
	eventCode := cur.Uint16BE()
	area := cur.Uint16BE()
	p1 := cur.Uint16BE()
	p2 := cur.Uint16BE()
	p3 := cur.Uint16BE()
	timestamp := cur.Uint32BE()
	cur.Bytes(5) // reserved gap before text_len, per spec.md 4.9
	textLen := int(cur.Uint16BE())
	if cur.Len() < textLen {
		return subscriptionFields{}, fmt.Errorf("history: subscription text truncated")
	}
	text := string(cur.Bytes(textLen))
	return subscriptionFields{
		storedID:      eventID + 1,
		eventCode:     eventCode,
		area:          area,
		p1:            p1,
		p2:            p2,
		p3:            p3,
		timestampWord: timestamp,
		text:          text,
	}, nil
}

// timeFrom16x16LE decodes the Solution/AMAX polled timestamp: first word
// minute/hour/day, second word second/month/year (spec.md 4.9).
func timeFrom16x16LE(word1, word2 uint16) time.Time {
	minute := int(word1 & 0x3F)
	hour := int((word1 >> 6) & 0x1F)
	day := int((word1 >> 11) & 0x1F)
	second := int(word2 & 0x3F)
	month := int((word2 >> 6) & 0x0F)
	year := 2000 + int((word2>>10)&0x3F)
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// timeFromBG32 decodes the B/G 32-bit packed timestamp. dayMonthBias is
// added to day and month; subscription events carry a +1 bias per
// spec.md 4.9, polled events carry none.
func timeFromBG32(word uint32, dayMonthBias int) time.Time {
	year := 2010 + int((word>>26)&0x3F)
	month := int((word>>22)&0x0F) + dayMonthBias
	day := int((word>>17)&0x1F) + dayMonthBias
	hour := int((word >> 12) & 0x1F)
	minute := int((word >> 6) & 0x3F)
	second := int(word & 0x3F)
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}
