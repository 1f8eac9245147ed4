// Package util provides the small leveled-debug-logging and math helpers
// shared across the FTL packages.
package util

import "log"

// Debug is the verbosity threshold for DPrintf; raise it to see more trace
// output while debugging a mount/sync sequence.
const Debug uint64 = 1

// DPrintf logs format/a if level is at or below Debug.
func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		log.Printf(format, a...)
	}
}

// RoundUp divides n by sz, rounding up.
func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

// Min returns the smaller of n and m.
func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	}
	return m
}

// FillByte sets every byte of buf to b, in place.
func FillByte(buf []byte, b byte) {
	for i := range buf {
		buf[i] = b
	}
}

// AllOnes reports whether every byte of buf is 0xFF.
func AllOnes(buf []byte) bool {
	for _, b := range buf {
		if b != 0xFF {
			return false
		}
	}
	return true
}
