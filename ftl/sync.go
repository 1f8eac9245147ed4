package ftl

import "github.com/norflash/ftl/tt"

// Sync flushes locked buffers in three phases in order: data pages, then
// secondary TTs, then the master TT last. A false return stops at the
// failing buffer: it and every buffer not yet reached stay locked with
// their pending mode, so the caller may retry. Nothing is rolled back; a
// TT page whose relocation failed keeps its already-bumped serial.
func (f *FTL) Sync() bool {
	f.Stats.SyncCount++

	for _, slot := range f.Cache.LockedSlots() {
		if uint64(slot.Logical) < f.Geom.T {
			continue
		}
		if !programPage(f, slot) {
			return false
		}
		info, ok := f.TT.ReadPageInfo(slot.Logical)
		if !ok {
			return false
		}
		info.Physical = slot.Physical
		if !f.TT.UpdatePageInfo(slot.Logical, info) {
			return false
		}
	}

	mtt, ok := f.TT.LoadMTT()
	if !ok {
		return false
	}
	for _, slot := range f.Cache.LockedSlots() {
		if slot.Logical == 0 || uint64(slot.Logical) >= f.Geom.T {
			continue
		}
		if !programPage(f, slot) {
			return false
		}
		rec := tt.ReadRecord(mtt.Data, uint64(slot.Logical))
		rec.Physical = slot.Physical
		tt.WriteRecord(mtt.Data, uint64(slot.Logical), rec)
	}

	if mtt.Lock {
		if !programPage(f, mtt) {
			return false
		}
	}
	return true
}
