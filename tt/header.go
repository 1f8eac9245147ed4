package tt

import (
	"encoding/binary"

	"github.com/norflash/ftl/common"
	"github.com/norflash/ftl/crc16"
)

// Header is a TT page's 16-byte header.
type Header struct {
	Magic         uint32
	LogicalPageNo uint32
	Serial        uint32
	Padding       uint16
	CRC           uint16
}

// crcBytes returns the 14 bytes the CRC is computed over, with padding
// forced to 0xFFFF so the CRC is well-defined independent of what padding
// bytes are actually on media.
func crcBytes(h Header) []byte {
	buf := make([]byte, common.TTHeaderSize-2)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.LogicalPageNo)
	binary.LittleEndian.PutUint32(buf[8:12], h.Serial)
	binary.LittleEndian.PutUint16(buf[12:14], common.TTHeaderPadding)
	return buf
}

func computeCRC(h Header) uint16 {
	return crc16.Checksum(crcBytes(h))
}

// EncodeHeader packs h into 16 bytes, forcing Padding to 0xFFFF and
// recomputing the CRC over the forced-padding form.
func EncodeHeader(h Header) []byte {
	h.Padding = common.TTHeaderPadding
	h.CRC = computeCRC(h)
	buf := make([]byte, common.TTHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.LogicalPageNo)
	binary.LittleEndian.PutUint32(buf[8:12], h.Serial)
	binary.LittleEndian.PutUint16(buf[12:14], h.Padding)
	binary.LittleEndian.PutUint16(buf[14:16], h.CRC)
	return buf
}

// DecodeHeader unpacks the first 16 bytes of a TT page.
func DecodeHeader(page []byte) Header {
	return Header{
		Magic:         binary.LittleEndian.Uint32(page[0:4]),
		LogicalPageNo: binary.LittleEndian.Uint32(page[4:8]),
		Serial:        binary.LittleEndian.Uint32(page[8:12]),
		Padding:       binary.LittleEndian.Uint16(page[12:14]),
		CRC:           binary.LittleEndian.Uint16(page[14:16]),
	}
}

// Valid reports whether h has the TT magic and a matching CRC.
func (h Header) Valid() bool {
	return h.Magic == common.TTMagic && computeCRC(h) == h.CRC
}

// WriteHeader stamps a fresh header (magic, logical page number, serial)
// into page, computing and storing its CRC.
func WriteHeader(page []byte, logical uint32, serial uint32) {
	h := Header{Magic: common.TTMagic, LogicalPageNo: logical, Serial: serial}
	copy(page[:common.TTHeaderSize], EncodeHeader(h))
}

// ReadHeader reads and decodes the header of a TT page.
func ReadHeader(page []byte) Header {
	return DecodeHeader(page)
}

// BumpSerial increments the serial of the TT page in place and recomputes
// its CRC, used by the program engine's RelocateEraseProgram path.
func BumpSerial(page []byte) {
	h := ReadHeader(page)
	h.Serial++
	copy(page[:common.TTHeaderSize], EncodeHeader(h))
}
