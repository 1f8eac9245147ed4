package crc16

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumDeterministic(t *testing.T) {
	assert := assert.New(t)
	data := []byte{0x4A, 0x36, 0x87, 0xEF, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xFF}
	c1 := Checksum(data)
	c2 := Checksum(data)
	assert.Equal(c1, c2)
}

func TestChecksumDetectsBitFlip(t *testing.T) {
	assert := assert.New(t)
	data := []byte{0x4A, 0x36, 0x87, 0xEF, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xFF}
	orig := Checksum(data)

	for i := range data {
		flipped := append([]byte(nil), data...)
		flipped[i] ^= 0x01
		assert.NotEqual(orig, Checksum(flipped), "byte %d bit flip should change CRC", i)
	}
}

func TestChecksumEmpty(t *testing.T) {
	assert.Equal(t, uint16(InitialValue), Checksum(nil))
}
