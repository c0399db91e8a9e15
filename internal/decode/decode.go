// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/lzo (generalized for LZSA1/LZSA2)

// Package decode holds the cursor and copy primitives shared by the
// lzsa1 and lzsa2 block decoders: bounds-checked byte/LE16 reads and the
// two copy engines (literal, overlap-tolerant match). Ladder and offset
// decoding stay in each variant's own package, per format.
package decode

import "github.com/basilhussain/stm8-lzsa/lzsaerr"

// ReadByte reads one byte from src at *pos and advances *pos.
func ReadByte(src []byte, pos *int) (byte, error) {
	if *pos >= len(src) {
		return 0, lzsaerr.ErrInputOverrun
	}

	b := src[*pos]
	*pos++

	return b, nil
}

// ReadLE16 reads one little-endian uint16 from src at *pos and advances *pos by 2.
func ReadLE16(src []byte, pos *int) (uint16, error) {
	if *pos+2 > len(src) {
		return 0, lzsaerr.ErrInputOverrun
	}

	lo := uint16(src[*pos])
	hi := uint16(src[*pos+1])
	*pos += 2

	return lo | hi<<8, nil
}

// CopyLiteral copies n bytes from src[*ip:] to dst[*op:] and advances both cursors.
func CopyLiteral(src []byte, ip *int, dst []byte, op *int, n int) error {
	if n == 0 {
		return nil
	}

	if *ip+n > len(src) {
		return lzsaerr.ErrInputOverrun
	}

	if *op+n > len(dst) {
		return lzsaerr.ErrOutputOverrun
	}

	copy(dst[*op:*op+n], src[*ip:*ip+n])
	*ip += n
	*op += n

	return nil
}

// CopyMatch copies n bytes from dst[op+offset:] to dst[op:], one byte at a
// time in ascending address order. offset is negative (distance behind the
// write cursor). Overlap is expected and load-bearing: when -offset < n, each
// freshly written byte becomes valid source for later bytes in the same
// call, producing run-length expansion. A bulk, non-overlap-aware copy (or
// one that copies tail-first) would corrupt this case, so this is a plain
// loop, never memmove/copy over the full range at once.
func CopyMatch(dst []byte, op, offset, n int) error {
	src := op + offset
	if src < 0 {
		return lzsaerr.ErrLookBehindUnderrun
	}

	if op+n > len(dst) {
		return lzsaerr.ErrOutputOverrun
	}

	for i := 0; i < n; i++ {
		dst[op+i] = dst[src+i]
	}

	return nil
}
