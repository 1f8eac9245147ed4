// Package common holds the numeric geometry of the FTL: sector and page
// sizes, the derived translation-table layout, and the small integer types
// shared by every other package.
package common

const (
	// SectorSize is the logical sector size exposed to the file system.
	SectorSize uint64 = 512

	// PageSize is the physical NOR erase/program unit.
	PageSize uint64 = 4096

	// SectorsPerPage is PageSize / SectorSize.
	SectorsPerPage uint64 = PageSize / SectorSize

	// TTRecordsPerPage is the number of page-info records packed into one
	// translation-table page: 1024 records * 4 bytes + 16-byte header = 4096.
	TTRecordsPerPage uint64 = 1024

	// PageInfoSize is the fixed on-media size of one packed page-info
	// record (see DESIGN.md open-question 1).
	PageInfoSize uint64 = 4

	// TTHeaderSize is the size of a translation-table page header.
	TTHeaderSize uint64 = 16

	// BufferMultiplier is the page-buffer-cache size, expressed as a
	// multiple of T (the number of translation-table pages).
	BufferMultiplier uint64 = 4

	// ReservedMultiplier (R) is the number of pages, per translation-table
	// page, held back from the usable sector count to give the
	// copy-on-write allocator slack.
	ReservedMultiplier uint64 = 16

	// TTMagic identifies a valid translation-table page header.
	TTMagic uint32 = 0xEF87364A

	// TTHeaderPadding is the fixed padding value forced into the header
	// before computing/checking its CRC.
	TTHeaderPadding uint16 = 0xFFFF
)

// SupportedSizesMiB enumerates the device sizes this FTL can format/mount.
var SupportedSizesMiB = [...]uint64{4, 8, 16, 32, 64, 128}

// IsSupportedSizeMiB reports whether sizeMiB is one of SupportedSizesMiB.
func IsSupportedSizeMiB(sizeMiB uint64) bool {
	for _, s := range SupportedSizesMiB {
		if s == sizeMiB {
			return true
		}
	}
	return false
}

// PhysPage is a physical page index, 0..P-1.
type PhysPage int32

// NoPhysPage is the "unallocated" sentinel for a physical page reference
// (on media this is the 16-bit value 0xFFFF, sign-extended here).
const NoPhysPage PhysPage = -1

// LogicalPage is a logical page index. Pages 0..T-1 are translation-table
// pages; pages T..L-1 are data pages.
type LogicalPage uint32

// Sector is a logical sector index, 0..UsableSectorCount-1.
type Sector uint64

// Geometry captures the derived layout for one device size.
type Geometry struct {
	SizeMiB uint64

	// P is the total physical page count.
	P uint64

	// T is the number of translation-table pages (master + secondary).
	T uint64

	// L is the total logical page count (T translation-table pages plus
	// data pages).
	L uint64

	// UsableSectorCount is the number of sectors the file system may
	// address: (P - T*R) * SectorsPerPage.
	UsableSectorCount uint64
}

// NewGeometry derives a Geometry for a supported device size. It returns
// false for an unsupported size.
func NewGeometry(sizeMiB uint64) (Geometry, bool) {
	if !IsSupportedSizeMiB(sizeMiB) {
		return Geometry{}, false
	}
	deviceSize := sizeMiB * 1024 * 1024
	p := deviceSize / PageSize
	t := p / 1024
	dataPages := p - t*ReservedMultiplier
	l := t + dataPages
	usable := dataPages * SectorsPerPage
	return Geometry{
		SizeMiB:           sizeMiB,
		P:                 p,
		T:                 t,
		L:                 l,
		UsableSectorCount: usable,
	}, true
}

// SectorLogicalPage returns the logical page number and in-page sector
// index for a logical sector.
func (g Geometry) SectorLogicalPage(n Sector) (LogicalPage, uint64) {
	logical := uint64(n)/SectorsPerPage + g.T
	sectorInPage := uint64(n) % SectorsPerPage
	return LogicalPage(logical), sectorInPage
}

// STTIndex returns which translation-table page (0..T-1) owns a data
// logical page, and the record index within that page. Index 0 is the MTT
// itself, whose records T..1023 serve as the data-page slots for logical
// pages below 1024.
func (g Geometry) STTIndex(logical LogicalPage) (sttLogical uint64, record uint64) {
	sttLogical = uint64(logical) / TTRecordsPerPage
	record = uint64(logical) % TTRecordsPerPage
	return
}
