// Package tt implements the two-level translation-table engine: the packed
// on-media page-info record, the TT page header with its CRC, and the
// master/secondary lookup and update paths. These fixed-width 2/4-byte
// records are packed and unpacked with encoding/binary.LittleEndian
// directly, since github.com/tchajed/marshal's Enc/Dec only expose 8-byte
// PutInt/GetInt and PutInts/GetInts words, not the narrower fields these
// records need.
package tt

import (
	"encoding/binary"

	"github.com/norflash/ftl/common"
)

// PageInfo is the in-memory form of one 4-byte packed page-info record: the
// physical page a logical page/record currently maps to, plus an 8-bit
// never-written bitmap over that page's 8 sectors.
type PageInfo struct {
	Physical     common.PhysPage
	SectorStatus uint8
}

const pageInfoReserved = 0xFF

// EncodePageInfo packs a PageInfo into its fixed 4-byte on-media form:
// int16 little-endian physical page, uint8 sector status, uint8 reserved.
func EncodePageInfo(pi PageInfo) []byte {
	buf := make([]byte, common.PageInfoSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(pi.Physical)))
	buf[2] = pi.SectorStatus
	buf[3] = pageInfoReserved
	return buf
}

// DecodePageInfo unpacks a 4-byte on-media page-info record.
func DecodePageInfo(data []byte) PageInfo {
	physical := int16(binary.LittleEndian.Uint16(data[0:2]))
	status := data[2]
	return PageInfo{Physical: common.PhysPage(physical), SectorStatus: status}
}

// recordOffset returns the byte offset of record i within a TT page.
func recordOffset(i uint64) uint64 {
	return common.TTHeaderSize + i*common.PageInfoSize
}

// ReadRecord reads page-info record i from a TT page's raw bytes.
func ReadRecord(page []byte, i uint64) PageInfo {
	off := recordOffset(i)
	return DecodePageInfo(page[off : off+common.PageInfoSize])
}

// WriteRecord writes page-info record i into a TT page's raw bytes.
func WriteRecord(page []byte, i uint64, pi PageInfo) {
	off := recordOffset(i)
	copy(page[off:off+common.PageInfoSize], EncodePageInfo(pi))
}
