package alu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd8(t *testing.T) {
	for _, tt := range []struct {
		p, q, cin    byte
		result       byte
		h, c, z      bool
	}{
		{0x3A, 0x71, 0, 0xAB, false, false, false},
		{0x39, 0x19, 0, 0x52, true, false, false},
		{0xFB, 0xF2, 0, 0xED, false, true, false},
		{0x00, 0x00, 0, 0x00, false, false, true},
		{0x20, 0xE0, 0, 0x00, false, true, true},
		{0x2A, 0xD6, 0, 0x00, true, true, true},
	} {
		result, h, c, z := Add8(tt.p, tt.q, tt.cin)
		assert.Equal(t, tt.result, result)
		assert.Equal(t, tt.h, h, "h for %02x+%02x", tt.p, tt.q)
		assert.Equal(t, tt.c, c, "c for %02x+%02x", tt.p, tt.q)
		assert.Equal(t, tt.z, z, "z for %02x+%02x", tt.p, tt.q)
	}
}

func TestAdc(t *testing.T) {
	result, h, c, z := Add8(0x71, 0x3A, 1)
	assert.Equal(t, byte(0xAC), result)
	assert.False(t, h)
	assert.False(t, c)
	assert.False(t, z)
}

func TestAdd8RoundTrip(t *testing.T) {
	for p := 0; p < 256; p++ {
		for q := 0; q < 256; q++ {
			result, _, _, z := Add8(byte(p), byte(q), 0)
			assert.Equal(t, byte((p+q)%256), result)
			assert.Equal(t, result == 0, z)
		}
	}
}

func TestAdd16(t *testing.T) {
	result, h, c := Add16(0x0FFF, 0x0001)
	assert.Equal(t, uint16(0x1000), result)
	assert.True(t, h)
	assert.False(t, c)

	result, h, c = Add16(0xFFFF, 0x0001)
	assert.Equal(t, uint16(0x0000), result)
	assert.True(t, h)
	assert.True(t, c)
}

func TestAdd16EUsesLowByteCarries(t *testing.T) {
	// regardless of p's high byte, H/C come from the low-byte add.
	_, h1, c1 := Add16E(0x00FF, 0x01)
	_, h2, c2 := Add16E(0xAAFF, 0x01)
	assert.Equal(t, h1, h2)
	assert.Equal(t, c1, c2)
	assert.True(t, h1)
	assert.True(t, c1)
}

func TestSub8(t *testing.T) {
	result, h, c, z := Sub8(0x00, 0x01, 0)
	assert.Equal(t, byte(0xFF), result)
	assert.True(t, h)
	assert.True(t, c)
	assert.False(t, z)

	result, h, c, z = Sub8(0x10, 0x10, 0)
	assert.Equal(t, byte(0), result)
	assert.False(t, h)
	assert.False(t, c)
	assert.True(t, z)
}

func TestSigned(t *testing.T) {
	assert.Equal(t, int16(-1), Signed(0xFF))
	assert.Equal(t, int16(127), Signed(0x7F))
	assert.Equal(t, int16(-128), Signed(0x80))
	assert.Equal(t, int16(0), Signed(0x00))
}
