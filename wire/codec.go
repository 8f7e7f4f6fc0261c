// Package wire implements the Mode 2 binary framing layer: fixed-width
// integer codecs, the three on-wire frame kinds, and the wire-exact
// command/error/enum tables published for the protocol.
package wire

import "fmt"

// Cursor is a forward-only reader over a byte slice, used to decode the
// fixed-field records the panel emits (status records, alarm-memory
// details, history records). It panics on short reads the same way the
// teacher's ASDU codec panics on a malformed info-object address — both
// indicate a framing bug upstream, not a recoverable condition.
type Cursor struct {
	b []byte
}

// NewCursor wraps b for sequential decoding.
func NewCursor(b []byte) *Cursor { return &Cursor{b: b} }

// Len reports the number of unread bytes.
func (c *Cursor) Len() int { return len(c.b) }

// Remaining returns the unread tail without consuming it.
func (c *Cursor) Remaining() []byte { return c.b }

func (c *Cursor) need(n int) {
	if len(c.b) < n {
		panic(fmt.Sprintf("wire: short read: need %d bytes, have %d", n, len(c.b)))
	}
}

// Uint8 reads one big-endian byte.
func (c *Cursor) Uint8() uint8 {
	c.need(1)
	v := c.b[0]
	c.b = c.b[1:]
	return v
}

// Uint16BE reads a two-byte big-endian integer.
func (c *Cursor) Uint16BE() uint16 {
	c.need(2)
	v := uint16(c.b[0])<<8 | uint16(c.b[1])
	c.b = c.b[2:]
	return v
}

// Uint16LE reads a two-byte little-endian integer.
func (c *Cursor) Uint16LE() uint16 {
	c.need(2)
	v := uint16(c.b[1])<<8 | uint16(c.b[0])
	c.b = c.b[2:]
	return v
}

// Uint32BE reads a four-byte big-endian integer.
func (c *Cursor) Uint32BE() uint32 {
	c.need(4)
	v := uint32(c.b[0])<<24 | uint32(c.b[1])<<16 | uint32(c.b[2])<<8 | uint32(c.b[3])
	c.b = c.b[4:]
	return v
}

// Uint32LE reads a four-byte little-endian integer.
func (c *Cursor) Uint32LE() uint32 {
	c.need(4)
	v := uint32(c.b[3])<<24 | uint32(c.b[2])<<16 | uint32(c.b[1])<<8 | uint32(c.b[0])
	c.b = c.b[4:]
	return v
}

// Uint48BE reads a six-byte big-endian integer (used for the serial number).
func (c *Cursor) Uint48BE() uint64 {
	c.need(6)
	var v uint64
	for i := 0; i < 6; i++ {
		v = v<<8 | uint64(c.b[i])
	}
	c.b = c.b[6:]
	return v
}

// Bytes consumes and returns the next n bytes.
func (c *Cursor) Bytes(n int) []byte {
	c.need(n)
	v := c.b[:n]
	c.b = c.b[n:]
	return v
}

// CString consumes bytes up to (and including) the first NUL, returning the
// bytes before it as a string. If no NUL is present, the whole remainder is
// returned and the cursor is drained.
func (c *Cursor) CString() string {
	for i, b := range c.b {
		if b == 0 {
			s := string(c.b[:i])
			c.b = c.b[i+1:]
			return s
		}
	}
	s := string(c.b)
	c.b = nil
	return s
}

// GetUint8 reads a single byte at offset, per the _get_int8 helper in the
// reference implementation; it does not mutate data.
func GetUint8(data []byte, offset int) uint8 { return data[offset] }

// GetUint16BE reads a big-endian 16-bit value at offset without consuming.
func GetUint16BE(data []byte, offset int) uint16 {
	return uint16(data[offset])<<8 | uint16(data[offset+1])
}

// GetUint32BE reads a big-endian 32-bit value at offset without consuming.
func GetUint32BE(data []byte, offset int) uint32 {
	return uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
		uint32(data[offset+2])<<8 | uint32(data[offset+3])
}

// PutUint16BE appends the big-endian encoding of v to dst.
func PutUint16BE(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// PutUint32BE appends the big-endian encoding of v to dst.
func PutUint32BE(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
