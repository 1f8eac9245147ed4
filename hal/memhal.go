package hal

import (
	"fmt"

	"github.com/norflash/ftl/common"
)

var _ HAL = (*MemHAL)(nil)

// MemHAL is an in-RAM HAL. It enforces the NOR program contract (only 1->0
// bit transitions take effect) and supports failure injection for
// crash-consistency tests.
type MemHAL struct {
	pages [][]byte

	// callCount is incremented on every HAL entry point; failAt, if
	// nonzero, makes the callCount'th call return false without taking
	// effect, simulating a power failure mid-operation.
	callCount uint64
	failAt    uint64
}

// NewMemHAL allocates an all-ones device of numPages physical pages.
func NewMemHAL(numPages uint64) *MemHAL {
	pages := make([][]byte, numPages)
	for i := range pages {
		p := make([]byte, common.PageSize)
		for j := range p {
			p[j] = 0xFF
		}
		pages[i] = p
	}
	return &MemHAL{pages: pages}
}

// Clone returns an independent copy of m's page contents, ignoring any
// pending failure-injection state. Used by crash-injection tests to try a
// given failure point repeatedly from the same known-good snapshot.
func (m *MemHAL) Clone() *MemHAL {
	pages := make([][]byte, len(m.pages))
	for i, p := range m.pages {
		cp := make([]byte, len(p))
		copy(cp, p)
		pages[i] = cp
	}
	return &MemHAL{pages: pages}
}

// FailAt arranges for the n'th HAL call (1-indexed, across Read/Program/
// Erase/IsErased) to fail and have no effect. FailAt(0) disables injection.
func (m *MemHAL) FailAt(n uint64) {
	m.failAt = n
	m.callCount = 0
}

// tick returns false if this call should be injected as a failure.
func (m *MemHAL) tick() bool {
	m.callCount++
	if m.failAt != 0 && m.callCount == m.failAt {
		return false
	}
	return true
}

func (m *MemHAL) pageIndex(addr uint32) (uint64, uint64) {
	page := uint64(addr) / common.PageSize
	off := uint64(addr) % common.PageSize
	return page, off
}

func (m *MemHAL) Read(addr uint32, out []byte) bool {
	if !m.tick() {
		return false
	}
	page, off := m.pageIndex(addr)
	if page >= uint64(len(m.pages)) || off+uint64(len(out)) > common.PageSize {
		panic(fmt.Sprintf("hal: out-of-bounds read at %d len %d", addr, len(out)))
	}
	copy(out, m.pages[page][off:off+uint64(len(out))])
	return true
}

func (m *MemHAL) Program(addr uint32, in []byte) bool {
	if !m.tick() {
		return false
	}
	if uint64(len(in)) != common.PageSize || uint64(addr)%common.PageSize != 0 {
		panic(fmt.Sprintf("hal: bad program at %d len %d", addr, len(in)))
	}
	page, _ := m.pageIndex(addr)
	if page >= uint64(len(m.pages)) {
		panic(fmt.Sprintf("hal: out-of-bounds program at %d", addr))
	}
	dst := m.pages[page]
	for i := range in {
		// only 1 -> 0 transitions take effect, matching real NOR.
		dst[i] &= in[i]
	}
	return true
}

func (m *MemHAL) Erase(addr uint32) bool {
	if !m.tick() {
		return false
	}
	if uint64(addr)%common.PageSize != 0 {
		panic(fmt.Sprintf("hal: unaligned erase at %d", addr))
	}
	page, _ := m.pageIndex(addr)
	if page >= uint64(len(m.pages)) {
		panic(fmt.Sprintf("hal: out-of-bounds erase at %d", addr))
	}
	p := m.pages[page]
	for i := range p {
		p[i] = 0xFF
	}
	return true
}

func (m *MemHAL) IsErased(addr uint32) bool {
	if !m.tick() {
		return false
	}
	page, _ := m.pageIndex(addr)
	if page >= uint64(len(m.pages)) {
		panic(fmt.Sprintf("hal: out-of-bounds is-erased at %d", addr))
	}
	for _, b := range m.pages[page] {
		if b != 0xFF {
			return false
		}
	}
	return true
}
