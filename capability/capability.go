// Package capability parses the WHAT_ARE_YOU reply into the negotiated
// feature set that governs arming-ID selection, history dialect, entity
// text-loading strategy, and in-flight command concurrency, per spec.md
// 4.3.
package capability

import (
	"fmt"

	"github.com/patchwell/boschalarm/wire"
)

// TextFormat selects how an entity kind's names are loaded.
type TextFormat int

const (
	// TextFormatNone means no name command is supported; names are
	// synthesized as "{TYPE}{id}".
	TextFormatNone TextFormat = iota
	// TextFormatCF01 loads one name at a time, keyed by id.
	TextFormatCF01
	// TextFormatCF03 loads names in batches.
	TextFormatCF03
)

// HistoryDialect selects which history record layout the panel speaks.
type HistoryDialect int

const (
	DialectSolution HistoryDialect = iota
	DialectAmax
	DialectBG
)

func (d HistoryDialect) String() string {
	switch d {
	case DialectSolution:
		return "solution"
	case DialectAmax:
		return "amax"
	case DialectBG:
		return "bg"
	default:
		return "unknown"
	}
}

// minWhatAreYouReply is the shortest reply this package can parse: offset
// 23 plus one byte of feature bitmask.
const minWhatAreYouReply = 24

// ErrReplyTooShort is returned when the WHAT_ARE_YOU reply is shorter than
// the fields this package needs to read.
var ErrReplyTooShort = fmt.Errorf("capability: what-are-you reply too short")

// Capabilities is the negotiated feature set for one connection.
type Capabilities struct {
	Family          wire.PanelFamily
	ProtocolMajor   byte
	ProtocolMinor   byte
	Busy            bool
	MaxInFlight     int64
	ArmPartial      byte
	ArmAll          byte
	HistoryDialect  HistoryDialect

	SupportsSerialNumber  bool
	SupportsExtendedWAY   bool
	SupportsSubscriptions bool
	AlarmSummaryFormat    int // 0 (unsupported), 1, or 2
	AreaTextFormat        TextFormat
	OutputTextFormat      TextFormat
	PointTextFormat       TextFormat
	SupportsDoorSubsystem bool
	DoorTextFormat        TextFormat
	SubscriptionFormat    int // 0 (unsupported), 1, or 2
	SupportsExtendedHistory bool
}

// formatRule pairs a bitmask with the value reported when the masked bits
// are all set. Rules are tried in order; the first match wins.
type formatRule struct {
	mask   uint32
	result int
}

// supportedFormat mirrors the reference implementation's
// _supported_format(value, [(mask, result), ...]): it returns the result
// for the first rule whose mask is fully set in value, or 0 if no rule
// matches.
func supportedFormat(value uint32, rules []formatRule) int {
	for _, r := range rules {
		if value&r.mask == r.mask {
			return r.result
		}
	}
	return 0
}

func textFormatOf(code int) TextFormat {
	switch code {
	case 1:
		return TextFormatCF01
	case 3:
		return TextFormatCF03
	default:
		return TextFormatNone
	}
}

// Negotiate parses a WHAT_ARE_YOU reply (as returned by wire.
// DecodeResponseBody) into a Capabilities value.
func Negotiate(reply []byte) (Capabilities, error) {
	if len(reply) < minWhatAreYouReply {
		return Capabilities{}, ErrReplyTooShort
	}

	c := Capabilities{
		Family:        wire.PanelFamily(reply[0]),
		ProtocolMajor: reply[5],
		ProtocolMinor: reply[6],
		Busy:          reply[13] != 0,
	}

	if c.Family >= wire.FamilyB4512 {
		c.MaxInFlight = 100
	} else {
		c.MaxInFlight = 1
	}

	// Arming-ID selection, per spec.md 4.3's table.
	if c.Family <= wire.FamilySolution4000 {
		c.ArmPartial = wire.ArmStay1
		c.ArmAll = wire.ArmAway
	} else {
		c.ArmPartial = wire.ArmPerimeterDelay
		c.ArmAll = wire.ArmMasterDelay
	}

	// History dialect selection, per spec.md 4.3.
	switch {
	case c.Family <= wire.FamilySolution3000 || c.Family == wire.FamilySolution4000:
		c.HistoryDialect = DialectSolution
	case c.Family <= wire.FamilyAmax4000:
		c.HistoryDialect = DialectAmax
	default:
		c.HistoryDialect = DialectBG
	}

	// Feature bitmask starts at offset 23. wire.DecodeResponseBody does not
	// pad it, so Negotiate right-pads it with zero bytes to 33 bytes here.
	mask := make([]byte, 33)
	copy(mask, reply[23:])

	bit := func(byteIdx int, bitIdx uint) bool {
		if byteIdx >= len(mask) {
			return false
		}
		return mask[byteIdx]&(1<<bitIdx) != 0
	}

	c.SupportsSerialNumber = bit(0, 0)
	c.SupportsExtendedWAY = bit(0, 1)
	c.SupportsSubscriptions = bit(0, 2)
	c.SupportsDoorSubsystem = bit(5, 0)
	c.SupportsExtendedHistory = bit(9, 0)

	alarmSummaryWord := fieldWord(mask, 1)
	c.AlarmSummaryFormat = supportedFormat(alarmSummaryWord, []formatRule{
		{mask: 0x02, result: 2},
		{mask: 0x01, result: 1},
	})

	areaTextWord := fieldWord(mask, 2)
	c.AreaTextFormat = textFormatOf(supportedFormat(areaTextWord, []formatRule{
		{mask: 0x02, result: 3},
		{mask: 0x01, result: 1},
	}))

	outputTextWord := fieldWord(mask, 3)
	c.OutputTextFormat = textFormatOf(supportedFormat(outputTextWord, []formatRule{
		{mask: 0x02, result: 3},
		{mask: 0x01, result: 1},
	}))

	pointTextWord := fieldWord(mask, 4)
	c.PointTextFormat = textFormatOf(supportedFormat(pointTextWord, []formatRule{
		{mask: 0x02, result: 3},
		{mask: 0x01, result: 1},
	}))

	doorTextWord := fieldWord(mask, 6)
	c.DoorTextFormat = textFormatOf(supportedFormat(doorTextWord, []formatRule{
		{mask: 0x02, result: 3},
		{mask: 0x01, result: 1},
	}))

	subscriptionWord := fieldWord(mask, 7)
	c.SubscriptionFormat = supportedFormat(subscriptionWord, []formatRule{
		{mask: 0x02, result: 2},
		{mask: 0x01, result: 1},
	})

	return c, nil
}

// fieldWord returns mask[idx] widened to uint32, the unit supportedFormat's
// rule masks operate on. Each feature lives in its own byte of the
// bitmask, per spec.md 4.3.
func fieldWord(mask []byte, idx int) uint32 {
	if idx >= len(mask) {
		return 0
	}
	return uint32(mask[idx])
}
