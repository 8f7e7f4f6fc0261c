package boschalarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAreaArmBitmap_S4 mirrors scenario S4: area id 3 packs to bitmap 0x20.
func TestAreaArmBitmap_S4(t *testing.T) {
	assert.Equal(t, []byte{0x20}, EncodeBitSet([]int{3}, 1))
}

// TestDecodeBitSet_S5 mirrors scenario S5.
func TestDecodeBitSet_S5(t *testing.T) {
	assert.Equal(t, []int{1}, DecodeBitSet([]byte{0x80}))
	assert.Equal(t, []int{1, 3}, DecodeBitSet([]byte{0xA0}))
}

// TestBitSetRoundTrip verifies invariant 8.
func TestBitSetRoundTrip(t *testing.T) {
	for id := 1; id <= 24; id++ {
		numBytes := (id + 7) / 8
		encoded := EncodeBitSet([]int{id}, numBytes)
		assert.Equal(t, []int{id}, DecodeBitSet(encoded))
	}
}
