// Package hal defines the narrow four-callback interface the FTL uses to
// talk to the underlying NOR device: a block-level interface narrowed down
// to the page-erase/program primitives a real NOR part exposes.
package hal

// HAL is the flash hardware-abstraction layer. All addresses are byte
// offsets from the start of the device. Every call is synchronous; a
// caller must not issue a new call before the previous one returns.
type HAL interface {
	// Read copies len(out) bytes starting at addr into out. len(out) must
	// be <= 4096.
	Read(addr uint32, out []byte) bool

	// Program writes in to addr, which must be 4 KiB-aligned, with
	// len(in) == 4096. Only 1->0 bit transitions are guaranteed to take
	// effect; programming over already-programmed bits that need to
	// flip 0->1 produces undefined on-media contents.
	Program(addr uint32, in []byte) bool

	// Erase resets one 4 KiB page at addr (4 KiB-aligned) to all-ones.
	Erase(addr uint32) bool

	// IsErased reports whether the 4 KiB page at addr currently reads as
	// all-ones.
	IsErased(addr uint32) bool
}
