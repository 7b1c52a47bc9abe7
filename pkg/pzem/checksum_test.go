package pzem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0xFFFF,
		},
		{
			name:     "check string",
			data:     []byte("123456789"),
			expected: 0x4B37,
		},
		{
			name:     "read measurement addr 0x01",
			data:     []byte{0x01, 0x04, 0x00, 0x00, 0x00, 0x0A},
			expected: 0x0D70,
		},
		{
			name:     "reset energy addr 0xF8",
			data:     []byte{0xF8, 0x42},
			expected: 0x41C2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Checksum(tt.data))
		})
	}
}

func TestCRCTableMatchesFirmwareTable(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0x0000), crcTable[0x00])
	assert.Equal(uint16(0xC0C1), crcTable[0x01])
	assert.Equal(uint16(0xC181), crcTable[0x02])
	assert.Equal(uint16(0xA001), crcTable[0x80])
	assert.Equal(uint16(0x4040), crcTable[0xFF])
}

func TestAppendChecksumLowByteFirst(t *testing.T) {
	frame := []byte{0x01, 0x42, 0x00, 0x00}
	require.True(t, AppendChecksum(frame))
	assert.Equal(t, []byte{0x01, 0x42, 0x80, 0x11}, frame)
}

func TestAppendChecksumTooShort(t *testing.T) {
	for _, frame := range [][]byte{nil, {}, {0xAA}, {0xAA, 0xBB}} {
		before := append([]byte(nil), frame...)
		assert.False(t, AppendChecksum(frame))
		assert.Equal(t, before, append([]byte(nil), frame...), "frame must be left untouched")
	}
}

func TestVerifyChecksumTooShort(t *testing.T) {
	assert.False(t, VerifyChecksum(nil))
	assert.False(t, VerifyChecksum([]byte{0xFF}))
	// 0xFFFF is the checksum of an empty payload, still rejected
	assert.False(t, VerifyChecksum([]byte{0xFF, 0xFF}))
}

func TestChecksumRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		frame := make([]byte, 4+rng.Intn(61))
		rng.Read(frame)
		require.True(t, AppendChecksum(frame))
		require.True(t, VerifyChecksum(frame), "frame % x", frame)
	}
}

func TestChecksumSingleBitSensitivity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		frame := make([]byte, 4+rng.Intn(61))
		rng.Read(frame)
		AppendChecksum(frame)

		for bit := 0; bit < len(frame)*8; bit++ {
			corrupted := append([]byte(nil), frame...)
			corrupted[bit/8] ^= 1 << (bit % 8)
			require.False(t, VerifyChecksum(corrupted), "bit %d of % x", bit, frame)
		}
	}
}
