package hal

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/norflash/ftl/common"
)

var _ HAL = (*FileHAL)(nil)

// FileHAL backs the FTL with a real file, using golang.org/x/sys/unix
// Pread/Pwrite/Fsync directly. It approximates NOR program semantics
// (1->0 only) and Erase (reset to all-ones) on top of a regular file,
// which is sufficient for the crash-injection harness in cmd/ftlsim: a
// "crash" is simulated by simply not calling Sync before the process
// exits, or by FailAt-style injection at the HAL call boundary.
type FileHAL struct {
	fd       int
	numPages uint64

	callCount uint64
	failAt    uint64
}

// FailAt arranges for the n'th HAL call (1-indexed) to fail and have no
// effect, the same call-count contract as MemHAL, so a failure can be
// reproduced against a real backing file. FailAt(0) disables injection.
func (f *FileHAL) FailAt(n uint64) {
	f.failAt = n
	f.callCount = 0
}

func (f *FileHAL) tick() bool {
	f.callCount++
	if f.failAt != 0 && f.callCount == f.failAt {
		return false
	}
	return true
}

// NewFileHAL opens (creating if necessary) path as a numPages-page device.
func NewFileHAL(path string, numPages uint64) (*FileHAL, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, err
	}
	size := int64(numPages * common.PageSize)
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if stat.Size != size {
		if err := unix.Ftruncate(fd, size); err != nil {
			unix.Close(fd)
			return nil, err
		}
		if stat.Size == 0 {
			// freshly created: fill with 0xFF so an unformatted device
			// reads as erased, matching a blank NOR part.
			blank := make([]byte, common.PageSize)
			for i := range blank {
				blank[i] = 0xFF
			}
			for p := uint64(0); p < numPages; p++ {
				if _, err := unix.Pwrite(fd, blank, int64(p*common.PageSize)); err != nil {
					unix.Close(fd)
					return nil, err
				}
			}
		}
	}
	return &FileHAL{fd: fd, numPages: numPages}, nil
}

func (f *FileHAL) checkAligned(addr uint32) uint64 {
	page := uint64(addr) / common.PageSize
	if uint64(addr)%common.PageSize != 0 || page >= f.numPages {
		panic(fmt.Sprintf("filehal: bad page address %d", addr))
	}
	return page
}

func (f *FileHAL) Read(addr uint32, out []byte) bool {
	if !f.tick() {
		return false
	}
	if uint64(addr)/common.PageSize >= f.numPages {
		panic(fmt.Sprintf("filehal: out-of-bounds read at %d", addr))
	}
	n, err := unix.Pread(f.fd, out, int64(addr))
	return err == nil && n == len(out)
}

func (f *FileHAL) Program(addr uint32, in []byte) bool {
	f.checkAligned(addr)
	if !f.tick() {
		return false
	}
	if uint64(len(in)) != common.PageSize {
		panic("filehal: program length must be one page")
	}
	cur := make([]byte, common.PageSize)
	if n, err := unix.Pread(f.fd, cur, int64(addr)); err != nil || n != len(cur) {
		return false
	}
	for i := range in {
		cur[i] &= in[i]
	}
	n, err := unix.Pwrite(f.fd, cur, int64(addr))
	return err == nil && n == len(cur)
}

func (f *FileHAL) Erase(addr uint32) bool {
	f.checkAligned(addr)
	if !f.tick() {
		return false
	}
	blank := make([]byte, common.PageSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	n, err := unix.Pwrite(f.fd, blank, int64(addr))
	return err == nil && n == len(blank)
}

func (f *FileHAL) IsErased(addr uint32) bool {
	f.checkAligned(addr)
	if !f.tick() {
		return false
	}
	buf := make([]byte, common.PageSize)
	if n, err := unix.Pread(f.fd, buf, int64(addr)); err != nil || n != len(buf) {
		return false
	}
	for _, b := range buf {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// Barrier fsyncs the backing file so previously programmed pages are
// durable before the caller proceeds.
func (f *FileHAL) Barrier() error {
	return unix.Fsync(f.fd)
}

// Close releases the backing file descriptor.
func (f *FileHAL) Close() error {
	return unix.Close(f.fd)
}
