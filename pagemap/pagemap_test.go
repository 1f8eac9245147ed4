package pagemap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norflash/ftl/common"
)

func TestGetSetRoundTrip(t *testing.T) {
	assert := assert.New(t)
	m := New(10)
	for i := common.PhysPage(0); i < 10; i++ {
		assert.Equal(Unknown, m.Get(i))
	}
	m.Set(3, Used)
	m.Set(4, Erased)
	m.Set(5, EraseRequired)
	assert.Equal(Used, m.Get(3))
	assert.Equal(Erased, m.Get(4))
	assert.Equal(EraseRequired, m.Get(5))
	assert.Equal(Unknown, m.Get(6))
}

func TestResolveFromMakesIncrementalProgress(t *testing.T) {
	assert := assert.New(t)
	m := New(8)
	erasedPages := map[common.PhysPage]bool{0: true, 2: true, 4: true}
	isErased := func(p common.PhysPage) bool { return erasedPages[p] }

	m.ResolveFrom(3, isErased)
	assert.False(m.Resolved())
	assert.Equal(Erased, m.Get(0))
	assert.Equal(EraseRequired, m.Get(1))
	assert.Equal(Erased, m.Get(2))
	assert.Equal(Unknown, m.Get(3))

	m.ResolveFrom(5, isErased)
	assert.True(m.Resolved())
	assert.Equal(Erased, m.Get(4))
	assert.Equal(EraseRequired, m.Get(7))
}

func TestResolvedLatchesAndNoOps(t *testing.T) {
	assert := assert.New(t)
	m := New(2)
	m.ResolveFrom(2, func(common.PhysPage) bool { return true })
	assert.True(m.Resolved())
	m.Set(0, Used)
	m.ResolveFrom(2, func(common.PhysPage) bool { return false })
	assert.Equal(Used, m.Get(0), "resolved map must not be touched again")
}

func TestSeedCursorOnlyBeforeFirstExamine(t *testing.T) {
	assert := assert.New(t)
	m := New(4)
	m.SeedCursor(2)
	m.ResolveFrom(1, func(common.PhysPage) bool { return true })
	assert.Equal(Erased, m.Get(2))
	assert.Equal(Unknown, m.Get(0))
}
