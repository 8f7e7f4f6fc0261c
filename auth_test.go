package boschalarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRemoteUserPayload_S3 mirrors scenario S3: code "1234" packs to hex
// "1234FFFF" -> 0x1234FFFF -> bytes 12 34 FF FF.
func TestRemoteUserPayload_S3(t *testing.T) {
	payload, err := remoteUserPayload("1234")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0xFF, 0xFF}, payload)
}

func TestRequireNumericCodeRejectsNonDigits(t *testing.T) {
	err := requireNumericCode("InstallerCode", "12a456")
	assert.Error(t, err)
}

func TestRequireNumericCodeRejectsEmpty(t *testing.T) {
	err := requireNumericCode("InstallerCode", "")
	assert.Error(t, err)
}

func TestRequireNumericCodeRejectsTooLong(t *testing.T) {
	err := requireNumericCode("InstallerCode", "123456789")
	assert.Error(t, err)
}

func TestRequireNumericCodeAcceptsValid(t *testing.T) {
	assert.NoError(t, requireNumericCode("InstallerCode", "1234"))
}
