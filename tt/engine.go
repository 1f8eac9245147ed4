package tt

import (
	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/pagebuf"
)

// Engine is the two-level translation-table lookup/update path: it
// reads/writes tracked page buffers on behalf of the higher-level FTL
// engine, but knows the specific master/secondary TT shape directly rather
// than routing through a generic sub-block addressing scheme.
type Engine struct {
	Geom common.Geometry
	Cache *pagebuf.Cache

	// MTTPhysical is the current physical location of the master TT
	// page. It is updated in place whenever the MTT relocates.
	MTTPhysical common.PhysPage
}

// NewEngine constructs a translation-table engine over an already-mounted
// or freshly-formatted cache.
func NewEngine(geom common.Geometry, cache *pagebuf.Cache, mttPhysical common.PhysPage) *Engine {
	return &Engine{Geom: geom, Cache: cache, MTTPhysical: mttPhysical}
}

// LoadMTT loads the master TT page into the cache (or returns it if
// already resident).
func (e *Engine) LoadMTT() (*pagebuf.Slot, bool) {
	return e.Cache.Load(0, e.MTTPhysical)
}

// loadOwningPage returns the cache slot for the TT page that owns logical,
// which is the MTT itself for TT logical pages and the appropriate
// secondary TT page for data logical pages.
func (e *Engine) loadOwningPage(logical common.LogicalPage) (*pagebuf.Slot, uint64, bool) {
	if uint64(logical) < e.Geom.T {
		mtt, ok := e.LoadMTT()
		return mtt, uint64(logical), ok
	}
	sttLogical, record := e.Geom.STTIndex(logical)
	mtt, ok := e.LoadMTT()
	if !ok {
		return nil, 0, false
	}
	sttInfo := ReadRecord(mtt.Data, sttLogical)
	if sttInfo.Physical < 0 {
		return nil, 0, false
	}
	stt, ok := e.Cache.Load(common.LogicalPage(sttLogical), sttInfo.Physical)
	return stt, record, ok
}

// ReadPageInfo resolves logical's current PageInfo record through the
// two-level translation table.
func (e *Engine) ReadPageInfo(logical common.LogicalPage) (PageInfo, bool) {
	slot, record, ok := e.loadOwningPage(logical)
	if !ok {
		return PageInfo{}, false
	}
	return ReadRecord(slot.Data, record), true
}

// UpdatePageInfo writes the record back into its owning TT page and
// locks/promotes that page's buffer so sync knows to flush it.
func (e *Engine) UpdatePageInfo(logical common.LogicalPage, info PageInfo) bool {
	slot, record, ok := e.loadOwningPage(logical)
	if !ok {
		return false
	}
	WriteRecord(slot.Data, record, info)
	slot.Lock = true
	slot.Mode = pagebuf.PromoteMode(slot.Mode, pagebuf.Program)
	return true
}

// OwningSTT returns the cache slot of the secondary TT page that owns a
// data logical page, along with its stt logical index, without touching
// the record itself. Used by the write path to lock the STT (and,
// transitively, the MTT) on an overwrite relocation.
func (e *Engine) OwningSTT(logical common.LogicalPage) (*pagebuf.Slot, uint64, bool) {
	sttLogical, _ := e.Geom.STTIndex(logical)
	mtt, ok := e.LoadMTT()
	if !ok {
		return nil, 0, false
	}
	sttInfo := ReadRecord(mtt.Data, sttLogical)
	if sttInfo.Physical < 0 {
		return nil, 0, false
	}
	stt, ok := e.Cache.Load(common.LogicalPage(sttLogical), sttInfo.Physical)
	return stt, sttLogical, ok
}
