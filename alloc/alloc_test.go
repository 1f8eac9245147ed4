package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/pagemap"
)

func allErased(m *pagemap.Map) {
	for p := uint64(0); p < m.NumPages(); p++ {
		m.Set(common.PhysPage(p), pagemap.Erased)
	}
}

func TestAllocateSkipsUsedAndWraps(t *testing.T) {
	assert := assert.New(t)
	m := pagemap.New(4)
	allErased(m)
	m.Set(0, pagemap.Used)
	m.Set(1, pagemap.Used)

	a := New(4, 0)
	p, ok := a.Allocate(m)
	assert.True(ok)
	assert.Equal(common.PhysPage(2), p)

	p2, ok := a.Allocate(m)
	assert.True(ok)
	assert.Equal(common.PhysPage(3), p2)
	assert.Equal(uint64(0), a.Peek(), "frontier wraps to page 0 after the last page")
}

func TestAllocateIsFirstFitRegardlessOfEraseState(t *testing.T) {
	assert := assert.New(t)
	m := pagemap.New(3)
	m.Set(0, pagemap.EraseRequired)
	m.Set(1, pagemap.Used)
	m.Set(2, pagemap.Erased)

	a := New(3, 0)
	p, ok := a.Allocate(m)
	assert.True(ok)
	assert.Equal(common.PhysPage(0), p, "first non-Used page wins regardless of erase state")
}

func TestAllocateAdvancesFrontierPastReturnedPageOnFallback(t *testing.T) {
	assert := assert.New(t)
	m := pagemap.New(4)
	m.Set(0, pagemap.Used)
	m.Set(1, pagemap.Used)
	m.Set(2, pagemap.EraseRequired)
	m.Set(3, pagemap.Used)

	a := New(4, 0)
	p, ok := a.Allocate(m)
	assert.True(ok)
	assert.Equal(common.PhysPage(2), p)
	assert.Equal(uint64(3), a.Peek(), "frontier must sit one past the returned page, not wrap to a full-revolution scan")
}

func TestAllocateReturnsFirstNonUsedPage(t *testing.T) {
	assert := assert.New(t)
	m := pagemap.New(2)
	m.Set(0, pagemap.Used)
	m.Set(1, pagemap.EraseRequired)

	a := New(2, 0)
	p, ok := a.Allocate(m)
	assert.True(ok)
	assert.Equal(common.PhysPage(1), p)
}

func TestAllocateFailsWhenDeviceFull(t *testing.T) {
	assert := assert.New(t)
	m := pagemap.New(2)
	m.Set(0, pagemap.Used)
	m.Set(1, pagemap.Used)

	a := New(2, 0)
	_, ok := a.Allocate(m)
	assert.False(ok, "a full revolution finding nothing must fail, not hang")
}

func TestPeekReflectsNextScanStart(t *testing.T) {
	assert := assert.New(t)
	a := New(8, 3)
	assert.Equal(uint64(3), a.Peek())
}
