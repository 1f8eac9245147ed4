package ftl

import (
	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/pagebuf"
	"github.com/norflash/ftl/util"
)

// ReadSector reads one logical sector into out, filling it with 0xFF if
// the sector has never been written.
func (f *FTL) ReadSector(n common.Sector, out []byte) bool {
	if uint64(n) >= f.Geom.UsableSectorCount {
		return false
	}
	logical, sectorInPage := f.Geom.SectorLogicalPage(n)
	info, ok := f.TT.ReadPageInfo(logical)
	if !ok {
		return false
	}
	if info.SectorStatus&(1<<sectorInPage) != 0 {
		util.FillByte(out, 0xFF)
		return true
	}
	slot, ok := f.Cache.Load(logical, info.Physical)
	if !ok {
		return false
	}
	off := sectorInPage * common.SectorSize
	copy(out, slot.Data[off:off+common.SectorSize])
	return true
}

// WriteSector writes count consecutive logical sectors starting at start,
// after running bounds checks and nudging the lazy erase-state resolver.
func (f *FTL) WriteSector(start common.Sector, count uint64, buf []byte) bool {
	if uint64(start)+count > f.Geom.UsableSectorCount {
		return false
	}
	f.PageMap.ResolveFrom(f.Geom.T, func(p common.PhysPage) bool {
		return f.HAL.IsErased(pageAddr(p))
	})

	for i := uint64(0); i < count; i++ {
		sector := start + common.Sector(i)
		payload := buf[i*common.SectorSize : (i+1)*common.SectorSize]
		if !f.writeOneSector(sector, payload) {
			return false
		}
	}
	return true
}

// writeOneSector resolves or allocates n's owning page, updates its
// PageInfo record, and copies payload into the buffered page.
func (f *FTL) writeOneSector(n common.Sector, payload []byte) bool {
	if f.Cache.UnlockedCount() < 3 {
		f.Stats.BufferStarvationRetries++
		if !f.Sync() {
			return false
		}
		if f.Cache.UnlockedCount() < 3 {
			return false
		}
	}

	logical, sectorInPage := f.Geom.SectorLogicalPage(n)
	info, ok := f.TT.ReadPageInfo(logical)
	if !ok {
		return false
	}

	var slot *pagebuf.Slot
	if info.Physical < 0 {
		phys, ok := f.Frontier.Allocate(f.PageMap)
		if !ok {
			f.Stats.AllocatorExhaustions++
			return false
		}
		s, ok := f.Cache.Init(logical, phys)
		if !ok {
			return false
		}
		slot = s
		info.Physical = phys
		info.SectorStatus = 0xFF
		if !f.TT.UpdatePageInfo(logical, info) {
			return false
		}
	} else {
		s, ok := f.Cache.Load(logical, info.Physical)
		if !ok {
			return false
		}
		slot = s
	}

	bit := uint8(1) << sectorInPage
	if info.SectorStatus&bit != 0 {
		info.SectorStatus &^= bit
		if !f.TT.UpdatePageInfo(logical, info) {
			return false
		}
		slot.Lock = true
		slot.Mode = pagebuf.PromoteMode(slot.Mode, pagebuf.Program)
	} else {
		slot.Lock = true
		slot.Mode = pagebuf.PromoteMode(slot.Mode, pagebuf.RelocateEraseProgram)
		if sttSlot, sttLogical, ok := f.TT.OwningSTT(logical); ok {
			sttSlot.Lock = true
			sttSlot.Mode = pagebuf.PromoteMode(sttSlot.Mode, pagebuf.RelocateEraseProgram)
			if sttLogical != 0 {
				if mtt, ok := f.TT.LoadMTT(); ok {
					mtt.Lock = true
					mtt.Mode = pagebuf.PromoteMode(mtt.Mode, pagebuf.RelocateEraseProgram)
				}
			}
		}
	}

	off := uint64(sectorInPage) * common.SectorSize
	copy(slot.Data[off:off+common.SectorSize], payload)
	return true
}
