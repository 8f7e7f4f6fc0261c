package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwell/boschalarm/wire"
)

func replyBytes(family byte, busy byte, maskByte0, maskByte1, maskByte2 byte) []byte {
	reply := make([]byte, minWhatAreYouReply+2)
	reply[0] = family
	reply[5] = 0x00
	reply[6] = 0x02
	reply[13] = busy
	reply[23] = maskByte0
	reply[24] = maskByte1
	reply[25] = maskByte2
	return reply
}

// TestNegotiate_S1_BFamily mirrors scenario S1: family 0xA4 (B5512),
// protocol v0.2, subscription bit set, in-flight concurrency raised to 100.
func TestNegotiate_S1_BFamily(t *testing.T) {
	reply := replyBytes(byte(wire.FamilyB5512), 0x00, 0x07, 0x00, 0x00)
	c, err := Negotiate(reply)
	require.NoError(t, err)

	assert.Equal(t, wire.FamilyB5512, c.Family)
	assert.Equal(t, byte(0x00), c.ProtocolMajor)
	assert.Equal(t, byte(0x02), c.ProtocolMinor)
	assert.False(t, c.Busy)
	assert.EqualValues(t, 100, c.MaxInFlight)
	assert.Equal(t, wire.ArmPerimeterDelay, c.ArmPartial)
	assert.Equal(t, wire.ArmMasterDelay, c.ArmAll)
	assert.Equal(t, DialectBG, c.HistoryDialect)
	assert.True(t, c.SupportsSerialNumber)
	assert.True(t, c.SupportsExtendedWAY)
	assert.True(t, c.SupportsSubscriptions)
}

func TestNegotiate_SolutionFamily(t *testing.T) {
	reply := replyBytes(byte(wire.FamilySolution2000), 0x01, 0x00, 0x00, 0x00)
	c, err := Negotiate(reply)
	require.NoError(t, err)

	assert.True(t, c.Busy)
	assert.EqualValues(t, 1, c.MaxInFlight)
	assert.Equal(t, wire.ArmStay1, c.ArmPartial)
	assert.Equal(t, wire.ArmAway, c.ArmAll)
	assert.Equal(t, DialectSolution, c.HistoryDialect)
}

func TestNegotiate_AmaxFamilyUsesAmaxDialectButSolutionArming(t *testing.T) {
	reply := replyBytes(byte(wire.FamilyAmax3000), 0x00, 0x00, 0x00, 0x00)
	c, err := Negotiate(reply)
	require.NoError(t, err)

	assert.Equal(t, wire.ArmStay1, c.ArmPartial)
	assert.Equal(t, wire.ArmAway, c.ArmAll)
	assert.Equal(t, DialectAmax, c.HistoryDialect)
}

func TestNegotiate_ReplyTooShort(t *testing.T) {
	_, err := Negotiate(make([]byte, 10))
	assert.ErrorIs(t, err, ErrReplyTooShort)
}

func TestSupportedFormatPicksRichestMatchingRule(t *testing.T) {
	rules := []formatRule{{mask: 0x02, result: 2}, {mask: 0x01, result: 1}}
	assert.Equal(t, 2, supportedFormat(0x03, rules))
	assert.Equal(t, 1, supportedFormat(0x01, rules))
	assert.Equal(t, 0, supportedFormat(0x00, rules))
}

func TestTextFormatDerivation(t *testing.T) {
	reply := replyBytes(byte(wire.FamilyB5512), 0x00, 0x00, 0x00, 0x02)
	c, err := Negotiate(reply)
	require.NoError(t, err)
	assert.Equal(t, TextFormatCF03, c.AreaTextFormat)

	reply2 := replyBytes(byte(wire.FamilyB5512), 0x00, 0x00, 0x00, 0x01)
	c2, err := Negotiate(reply2)
	require.NoError(t, err)
	assert.Equal(t, TextFormatCF01, c2.AreaTextFormat)

	reply3 := replyBytes(byte(wire.FamilyB5512), 0x00, 0x00, 0x00, 0x00)
	c3, err := Negotiate(reply3)
	require.NoError(t, err)
	assert.Equal(t, TextFormatNone, c3.AreaTextFormat)
}
