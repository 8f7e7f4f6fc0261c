package wire

import (
	"errors"
	"fmt"
)

// ErrUnexpectedResponse marks a malformed frame or an unrecognized status
// byte, per spec.md 7 (UnexpectedResponse).
var ErrUnexpectedResponse = errors.New("wire: unexpected response")

// NackError is returned when the panel rejects a command with status 0xFD.
// Code is the raw wire error byte; Text is looked up from the published
// error-code table (falling back to a generic message for unknown codes).
type NackError struct {
	Code byte
	Text string
}

func (e *NackError) Error() string {
	return fmt.Sprintf("nack 0x%02x: %s", e.Code, e.Text)
}

// errorTable is the wire-exact error-code table from spec.md 6, grounded on
// bosch_alarm_mode2/const.py's ERROR dict.
var errorTable = map[byte]string{
	0x00: "Non-specific error",
	0x01: "Checksum failure (UDP connections only)",
	0x02: "Invalid size / length",
	0x03: "Invalid command",
	0x04: "Invalid interface state",
	0x05: "Data out of range",
	0x06: "No authority",
	0x07: "Unsupported command",
	0x08: "Cannot arm panel",
	0x09: "Invalid Remote ID",
	0x0A: "Invalid License",
	0x0B: "Invalid Magic Number",
	0x0C: "Expired License",
	0x0D: "Expired Magic Number",
	0x0E: "Unsupported Format Version",
	0x11: "Firmware Update in Progress",
	0x12: "Incompatible Firmware Version",
	0x13: "All Points Not Configured",
	0x20: "Execution Function No Errors",
	0x21: "Execution Function Invalid Area",
	0x22: "Execution Function Invalid Command",
	0x23: "Execution Function Not Authenticated",
	0x24: "Execution Function Invalid User",
	0x40: "Execution Function Parameter Incorrect",
	0x41: "Execution Function Sequence Wrong",
	0x42: "Execution Function Invalid Configuration Request",
	0x43: "Execution Function Invalid Size",
	0x44: "Execution Function Time Out",
	0xDF: "RF Request Failed",
	0xE0: "No RF device with that RFID",
	0xE1: "Bad RFID. Not proper format",
	0xE2: "Too many RF devices for this panel",
	0xE3: "Duplicate RFID",
	0xE4: "Duplicate access card",
	0xE5: "Bad access card data",
	0xE6: "Bad language choice",
	0xE7: "Bad supervision mode selection",
	0xE8: "Bad enable/disable choice",
	0xE9: "Bad Month",
	0xEA: "Bad Day",
	0xEB: "Bad Hour",
	0xEC: "Bad Minute",
	0xED: "Bad Time edit choice",
	0xEF: "Bad Remote Enable",
}

// ErrorText looks up the human-readable name for a NACK error byte.
func ErrorText(code byte) string {
	if t, ok := errorTable[code]; ok {
		return t
	}
	return fmt.Sprintf("unknown error code 0x%02x", code)
}
