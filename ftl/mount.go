package ftl

import (
	"github.com/norflash/ftl/alloc"
	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/hal"
	"github.com/norflash/ftl/pagebuf"
	"github.com/norflash/ftl/pagemap"
	"github.com/norflash/ftl/tt"
	"github.com/norflash/ftl/util"
)

// mount scans every physical page for a valid MTT candidate, picks the
// greatest serial, and rebuilds the in-RAM page-state map by walking the
// chosen MTT and its secondary TTs. Falls through to format when no
// candidate validates, so a corrupted or blank device transparently
// becomes a freshly formatted volume.
func mount(h hal.HAL, geom common.Geometry, stats *Stats) (*FTL, bool) {
	best := common.NoPhysPage
	var bestSerial uint32
	page := make([]byte, common.PageSize)

	for p := uint64(0); p < geom.P; p++ {
		if !h.Read(pageAddr(common.PhysPage(p)), page) {
			return nil, false
		}
		hdr := tt.ReadHeader(page)
		if hdr.LogicalPageNo != 0 || !hdr.Valid() {
			continue
		}
		if best == common.NoPhysPage || hdr.Serial > bestSerial {
			best = common.PhysPage(p)
			bestSerial = hdr.Serial
		}
	}

	if best == common.NoPhysPage {
		util.DPrintf(1, "ftl: no valid MTT found, formatting fresh volume")
		return format(h, geom, stats)
	}
	util.DPrintf(2, "ftl: mounting MTT at physical %d serial %d", best, bestSerial)

	pm := pagemap.New(geom.P)
	cacheSize := geom.T * common.BufferMultiplier
	cache := pagebuf.New(cacheSize, h)
	engine := tt.NewEngine(geom, cache, best)

	mtt, ok := engine.LoadMTT()
	if !ok {
		return nil, false
	}
	pm.Set(best, pagemap.Used)

	for i := uint64(0); i < geom.T; i++ {
		rec := tt.ReadRecord(mtt.Data, i)
		if rec.Physical < 0 {
			continue
		}
		pm.Set(rec.Physical, pagemap.Used)
		if i == 0 {
			// the MTT's self-reference; already accounted for above. Its
			// records T..1023 are STT-0's data-page slots.
			for j := geom.T; j < common.TTRecordsPerPage; j++ {
				drec := tt.ReadRecord(mtt.Data, j)
				if drec.Physical >= 0 {
					pm.Set(drec.Physical, pagemap.Used)
				}
			}
			continue
		}
		stt, ok := cache.Load(common.LogicalPage(i), rec.Physical)
		if !ok {
			return nil, false
		}
		for j := uint64(0); j < common.TTRecordsPerPage; j++ {
			drec := tt.ReadRecord(stt.Data, j)
			if drec.Physical >= 0 {
				pm.Set(drec.Physical, pagemap.Used)
			}
		}
	}

	frontier := alloc.New(geom.P, uint64(best)+1)
	pm.SeedCursor(frontier.Peek())
	pm.ResolveFrom(cacheSize, func(p common.PhysPage) bool {
		return h.IsErased(pageAddr(p))
	})

	return &FTL{
		Geom:     geom,
		HAL:      h,
		PageMap:  pm,
		Cache:    cache,
		TT:       engine,
		Frontier: frontier,
		Stats:    stats,
	}, true
}

// format builds a fresh MTT (record 0 -> physical 0, self-referencing) and
// T-1 empty secondary TTs, programs them in STT-then-MTT order, and starts
// the write frontier just past the translation-table region.
func format(h hal.HAL, geom common.Geometry, stats *Stats) (*FTL, bool) {
	pm := pagemap.New(geom.P)
	cacheSize := geom.T * common.BufferMultiplier
	cache := pagebuf.New(cacheSize, h)

	mttData := make([]byte, common.PageSize)
	tt.WriteHeader(mttData, 0, 1)
	tt.WriteRecord(mttData, 0, tt.PageInfo{Physical: 0, SectorStatus: 0xFF})
	for i := uint64(1); i < geom.T; i++ {
		tt.WriteRecord(mttData, i, tt.PageInfo{Physical: common.PhysPage(i), SectorStatus: 0xFF})
	}
	// Records T..1023 of the MTT double as STT-0's data-page slots, since
	// record 0 self-references the MTT's own physical page. Initialize them
	// the same way a genuine secondary TT's records are initialized below.
	for i := geom.T; i < common.TTRecordsPerPage; i++ {
		tt.WriteRecord(mttData, i, tt.PageInfo{Physical: common.NoPhysPage, SectorStatus: 0xFF})
	}

	for i := uint64(1); i < geom.T; i++ {
		sttData := make([]byte, common.PageSize)
		tt.WriteHeader(sttData, uint32(i), 1)
		for j := uint64(0); j < common.TTRecordsPerPage; j++ {
			tt.WriteRecord(sttData, j, tt.PageInfo{Physical: common.NoPhysPage, SectorStatus: 0xFF})
		}
		phys := common.PhysPage(i)
		if !ensureErased(h, pm, phys, stats) {
			return nil, false
		}
		if !h.Program(pageAddr(phys), sttData) {
			return nil, false
		}
		stats.ProgramCount++
		pm.Set(phys, pagemap.Used)
	}

	if !ensureErased(h, pm, 0, stats) {
		return nil, false
	}
	if !h.Program(pageAddr(0), mttData) {
		return nil, false
	}
	stats.ProgramCount++
	pm.Set(0, pagemap.Used)

	engine := tt.NewEngine(geom, cache, 0)
	frontier := alloc.New(geom.P, geom.T)

	pm.ResolveFrom(cacheSize, func(p common.PhysPage) bool {
		return h.IsErased(pageAddr(p))
	})

	return &FTL{
		Geom:     geom,
		HAL:      h,
		PageMap:  pm,
		Cache:    cache,
		TT:       engine,
		Frontier: frontier,
		Stats:    stats,
	}, true
}
