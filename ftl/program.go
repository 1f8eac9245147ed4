package ftl

import (
	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/hal"
	"github.com/norflash/ftl/pagebuf"
	"github.com/norflash/ftl/pagemap"
	"github.com/norflash/ftl/tt"
	"github.com/norflash/ftl/util"
)

func pageAddr(p common.PhysPage) uint32 {
	return uint32(p) * uint32(common.PageSize)
}

// ensureErased makes phys erased, consulting the page map first and only
// falling through to the HAL's is-erased probe and, if needed, an actual
// erase. Shared between the program engine and format().
func ensureErased(h hal.HAL, pm *pagemap.Map, phys common.PhysPage, stats *Stats) bool {
	if pm.Get(phys) == pagemap.Erased {
		return true
	}
	addr := pageAddr(phys)
	if h.IsErased(addr) {
		pm.Set(phys, pagemap.Erased)
		return true
	}
	if !h.Erase(addr) {
		return false
	}
	stats.EraseCount++
	pm.Set(phys, pagemap.Erased)
	return true
}

func finishSlot(slot *pagebuf.Slot) {
	slot.Lock = false
	slot.Mode = pagebuf.None
}

// programPage executes a locked buffer's pending program mode, dispatching
// its disk write based on the buffer's recorded intent rather than
// reprogramming everything unconditionally.
func programPage(f *FTL, slot *pagebuf.Slot) bool {
	switch slot.Mode {
	case pagebuf.None:
		return true

	case pagebuf.Program:
		if !f.HAL.Program(pageAddr(slot.Physical), slot.Data) {
			return false
		}
		f.Stats.ProgramCount++
		f.PageMap.Set(slot.Physical, pagemap.Used)
		finishSlot(slot)
		return true

	case pagebuf.EraseProgram:
		if !ensureErased(f.HAL, f.PageMap, slot.Physical, f.Stats) {
			return false
		}
		if !f.HAL.Program(pageAddr(slot.Physical), slot.Data) {
			return false
		}
		f.Stats.ProgramCount++
		f.PageMap.Set(slot.Physical, pagemap.Used)
		finishSlot(slot)
		return true

	case pagebuf.RelocateEraseProgram:
		newPhys, ok := f.Frontier.Allocate(f.PageMap)
		if !ok {
			util.DPrintf(1, "ftl: allocator exhausted relocating logical %d", slot.Logical)
			f.Stats.AllocatorExhaustions++
			return false
		}

		isTTPage := uint64(slot.Logical) < f.Geom.T
		if isTTPage {
			if slot.Logical == 0 {
				rec := tt.ReadRecord(slot.Data, 0)
				rec.Physical = newPhys
				tt.WriteRecord(slot.Data, 0, rec)
			}
			tt.BumpSerial(slot.Data)
		}

		if !ensureErased(f.HAL, f.PageMap, newPhys, f.Stats) {
			return false
		}
		if !f.HAL.Program(pageAddr(newPhys), slot.Data) {
			return false
		}
		f.Stats.ProgramCount++
		f.Stats.RelocationCount++

		old := slot.Physical
		f.PageMap.Set(old, pagemap.EraseRequired)
		f.PageMap.Set(newPhys, pagemap.Used)
		slot.Physical = newPhys
		if isTTPage && slot.Logical == 0 {
			f.TT.MTTPhysical = newPhys
		}
		finishSlot(slot)
		return true
	}
	return true
}
