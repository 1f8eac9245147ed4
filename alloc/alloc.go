// Package alloc implements the write frontier: a circular linear scan for
// the next non-Used physical page, following the same next-fit cursor
// discipline as a bitmap allocator's incNext/findFreeBit, but scanning a
// pagemap.Map's live page states directly rather than an on-disk bitmap,
// since page allocation state here is derived at mount time, not persisted.
package alloc

import (
	"sync"

	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/pagemap"
)

// Frontier is the circular write-frontier cursor: it hands out the first
// physical page that is not currently Used, wrapping around the device
// once, and fails fatally if a full revolution finds nothing.
type Frontier struct {
	lock *sync.Mutex
	numPages uint64
	next uint64 // next physical page to examine
}

// New creates a frontier over a device of numPages physical pages, starting
// its scan at start (typically just past the translation-table region).
func New(numPages uint64, start uint64) *Frontier {
	return &Frontier{
		lock:     new(sync.Mutex),
		numPages: numPages,
		next:     start % numPages,
	}
}

func (a *Frontier) advance() uint64 {
	cur := a.next
	a.next++
	if a.next >= a.numPages {
		a.next = 0
	}
	return cur
}

// Peek returns the page the next Allocate call will examine first, without
// consuming it. Used by mount/format to seed pagemap.Map's resolver cursor
// at the same point so incremental erase-state resolution and allocation
// scan in step.
func (a *Frontier) Peek() uint64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.next
}

// Allocate returns the first physical page whose pagemap state is not Used,
// scanning forward from the current frontier position, and marks it Used
// before returning. It scans at most one full revolution of the device; if
// every page is Used, it returns false — the caller must treat this as a
// fatal device-full condition.
func (a *Frontier) Allocate(m *pagemap.Map) (common.PhysPage, bool) {
	a.lock.Lock()
	defer a.lock.Unlock()

	for scanned := uint64(0); scanned < a.numPages; scanned++ {
		page := common.PhysPage(a.advance())
		if m.Get(page) != pagemap.Used {
			m.Set(page, pagemap.Used)
			return page, true
		}
	}
	return common.NoPhysPage, false
}
