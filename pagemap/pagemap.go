// Package pagemap tracks the erase/program state of every physical page in
// two bits, packed into machine words the same way an on-disk allocation
// bitmap packs its bits, adapted here from an on-media bitmap to a purely
// in-RAM state map since page state is derived, not persisted.
package pagemap

import "github.com/norflash/ftl/common"

// State is one physical page's resolved status.
type State uint8

const (
	// Unknown means the state has not been resolved since mount.
	Unknown State = 0
	// Used means the page is referenced by the current TT view.
	Used State = 1
	// EraseRequired means the page is orphaned and holds stale data.
	EraseRequired State = 2
	// Erased means the page has been confirmed to read as all-ones.
	Erased State = 3
)

const bitsPerPage = 2
const pagesPerWord = 64 / bitsPerPage

// Map is a packed 2-bit-per-page state array plus a lazy erase-state
// resolver: pages start Unknown and are only probed for erased-ness as
// mount has cycles to spare, rather than all at once up front.
type Map struct {
	words    []uint64
	numPages uint64

	// resolveCursor is where the lazy resolver will look next.
	resolveCursor uint64
	resolved      bool

	// examinedTotal counts pages the resolver has examined across calls.
	examinedTotal uint64
}

// New allocates a state map for numPages physical pages, all initially
// Unknown.
func New(numPages uint64) *Map {
	nwords := (numPages + pagesPerWord - 1) / pagesPerWord
	return &Map{
		words:    make([]uint64, nwords),
		numPages: numPages,
	}
}

// Get returns the state of page.
func (m *Map) Get(page common.PhysPage) State {
	idx := uint64(page)
	word := m.words[idx/pagesPerWord]
	shift := (idx % pagesPerWord) * bitsPerPage
	return State((word >> shift) & 0x3)
}

// Set records the state of page.
func (m *Map) Set(page common.PhysPage, s State) {
	idx := uint64(page)
	wi := idx / pagesPerWord
	shift := (idx % pagesPerWord) * bitsPerPage
	m.words[wi] = (m.words[wi] &^ (uint64(0x3) << shift)) | (uint64(s) << shift)
}

// NumPages returns the number of pages tracked.
func (m *Map) NumPages() uint64 {
	return m.numPages
}

// Resolved reports whether every page has been examined by the resolver at
// least once.
func (m *Map) Resolved() bool {
	return m.resolved
}

// SeedCursor sets where the next ResolveFrom call will start scanning. It
// only has an effect before the first page has been examined.
func (m *Map) SeedCursor(start uint64) {
	if m.examinedTotal == 0 {
		m.resolveCursor = start % m.numPages
	}
}

// ResolveFrom runs the lazy resolver for up to count pages, wrapping around
// the array as needed. isErased is the HAL's is-flash-erased probe. Once
// every page has been examined at least once, Resolved latches true and
// subsequent calls are no-ops.
func (m *Map) ResolveFrom(count uint64, isErased func(page common.PhysPage) bool) {
	if m.resolved {
		return
	}
	examined := uint64(0)
	// track progress across the whole array so callers with small counts
	// still make forward progress toward Resolved latching true.
	for examined < count {
		page := common.PhysPage(m.resolveCursor)
		if m.Get(page) == Unknown {
			if isErased(page) {
				m.Set(page, Erased)
			} else {
				m.Set(page, EraseRequired)
			}
		}
		examined++
		m.examinedTotal++
		m.resolveCursor++
		if m.resolveCursor >= m.numPages {
			m.resolveCursor = 0
		}
		if m.examinedTotal >= m.numPages {
			m.resolved = true
			return
		}
	}
}
