// Package ftl wires the physical-page state map, page buffer cache,
// translation-table engine, and write-frontier allocator into a flash
// translation layer: mount/format, sector read/write, and the crash-safe
// sync protocol. It is a single-threaded, synchronous facade that a caller
// must externally serialize.
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

// FTL is one mounted flash-translation-layer instance. It fully
// encapsulates its mutable state; there is no process-wide singleton —
// callers pass the handle to every operation.
type FTL struct {
	Geom common.Geometry
	HAL  hal.HAL

	PageMap  *pagemap.Map
	Cache    *pagebuf.Cache
	TT       *tt.Engine
	Frontier *alloc.Frontier

	Stats *Stats
}

// Init mounts an existing volume or formats a new one over the given HAL.
// sizeMiB must be one of the supported device sizes; anything else fails
// immediately with no state change.
func Init(h hal.HAL, sizeMiB uint64) (*FTL, bool) {
	geom, ok := common.NewGeometry(sizeMiB)
	if !ok {
		util.DPrintf(1, "ftl: unsupported device size %d MiB", sizeMiB)
		return nil, false
	}
	return mount(h, geom, &Stats{})
}

// Deinit releases the in-RAM state. It does not flush; callers that need
// durability must Sync first.
func (f *FTL) Deinit() {
	f.PageMap = nil
	f.Cache = nil
	f.TT = nil
	f.Frontier = nil
}
