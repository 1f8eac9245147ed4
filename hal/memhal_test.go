package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norflash/ftl/common"
)

func TestMemHALFreshIsErased(t *testing.T) {
	m := NewMemHAL(4)
	assert.True(t, m.IsErased(0))
	assert.True(t, m.IsErased(uint32(common.PageSize)))
}

func TestMemHALProgramOnlyClearsBits(t *testing.T) {
	assert := assert.New(t)
	m := NewMemHAL(2)
	page := make([]byte, common.PageSize)
	for i := range page {
		page[i] = 0xAA
	}
	assert.True(m.Program(0, page))
	assert.False(m.IsErased(0))

	// programming 0xFF over 0xAA must not set any bit back to 1.
	allOnes := make([]byte, common.PageSize)
	for i := range allOnes {
		allOnes[i] = 0xFF
	}
	assert.True(m.Program(0, allOnes))
	out := make([]byte, common.PageSize)
	assert.True(m.Read(0, out))
	assert.Equal(page, out, "0xFF program must not clear bits back to 1")
}

func TestMemHALEraseResetsToOnes(t *testing.T) {
	assert := assert.New(t)
	m := NewMemHAL(1)
	page := make([]byte, common.PageSize)
	for i := range page {
		page[i] = 0x00
	}
	m.Program(0, page)
	assert.False(m.IsErased(0))
	assert.True(m.Erase(0))
	assert.True(m.IsErased(0))
}

func TestMemHALFailAtInjection(t *testing.T) {
	assert := assert.New(t)
	m := NewMemHAL(1)
	m.FailAt(2)
	assert.True(m.IsErased(0))          // call 1: succeeds
	assert.False(m.IsErased(0))         // call 2: injected failure
	assert.True(m.IsErased(0))          // call 3: back to normal
}
