package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Standard check value for "123456789".
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
	assert.NoError(t, Verify([]byte("123456789"), 0xe3069283))
	assert.ErrorIs(t, Verify([]byte("123456780"), 0xe3069283), ErrChecksumMismatch)
}
