// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/lzo (decompress.go state-machine shape),
// basilhussain/stm8-lzsa lzsa_ref.c (lzsa2_decompress_block_ref semantics)

/*
Package lzsa2 implements the LZSA2 block decoder.

LZSA2 is the richer sibling of LZSA1: its token byte is XYZ|LL|MMM (offset
mode, inverted offset bit Z, literal-length seed, match-length seed), its
escape ladders are nibble-based before falling back to bytes, and it adds
a last-offset repeat mode driven by the token's Z bit.

	n, err := lzsa2.DecompressBlock(dst, compressed)
	out, err := lzsa2.Decompress(compressed, lzsa2.DefaultOptions(expectedLen))
*/
package lzsa2

import (
	"io"

	"github.com/basilhussain/stm8-lzsa/internal/decode"
	"github.com/basilhussain/stm8-lzsa/lzsaerr"
)

// LZSA2 token byte layout XYZ|LL|MMM: offset mode, inverted offset/repeat
// bit, literal-length seed, match-length seed.
const (
	tokenOffsetModeMask  = 0xC0
	tokenOffsetModeShift = 6
	tokenZBit            = 0x20
	tokenLitLenMask      = 0x18
	tokenLitLenShift     = 3
	tokenMatchLenMask    = 0x07

	offsetMode5Bit  = 0
	offsetMode9Bit  = 1
	offsetMode13Bit = 2
	offsetMode16Bit = 3

	litLenEscape   = 3
	matchLenEscape = 7
	matchLenMin    = 2
)

// Options configures Decompress/DecompressFromReader.
type Options struct {
	// OutLen is the expected decompressed size (required for buffer allocation).
	OutLen int
	// MaxInputSize limits how many bytes DecompressFromReader may read (0 = no limit).
	MaxInputSize int
}

// DefaultOptions returns Options with the given output length and no input limit.
func DefaultOptions(outLen int) *Options {
	return &Options{OutLen: outLen}
}

// Decompress decompresses one LZSA2 block from src into a freshly allocated
// buffer of length opts.OutLen bytes, trimmed to the bytes actually written.
func Decompress(src []byte, opts *Options) ([]byte, error) {
	if opts == nil || opts.OutLen < 0 {
		return nil, lzsaerr.ErrOutLenRequired
	}

	if len(src) == 0 {
		return nil, lzsaerr.ErrEmptyInput
	}

	dst := make([]byte, opts.OutLen)
	n, err := DecompressBlock(dst, src)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// DecompressFromReader reads the full stream then calls Decompress. No decoding logic of its own.
func DecompressFromReader(r io.Reader, opts *Options) ([]byte, error) {
	if opts == nil {
		return nil, lzsaerr.ErrOutLenRequired
	}

	if opts.MaxInputSize > 0 {
		r = io.LimitReader(r, int64(opts.MaxInputSize)+1)
	}

	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if opts.MaxInputSize > 0 && len(src) > opts.MaxInputSize {
		return nil, lzsaerr.ErrInputTooLarge
	}

	return Decompress(src, opts)
}

// nibbleReader is the LZSA2 nibble stream: a one-byte cache shared across all
// nibble reads in a block. When ready, the next call fetches a fresh byte and
// returns its high nibble; otherwise it returns the cached low nibble without
// touching the input. The flag toggles on every call. Created fresh for
// each block decode; never pooled or shared across calls, since it is cheap
// enough to live on the stack.
type nibbleReader struct {
	ready bool
	cache byte
}

func newNibbleReader() nibbleReader {
	return nibbleReader{ready: true}
}

func (nr *nibbleReader) next(src []byte, ip *int) (byte, error) {
	if nr.ready {
		b, err := decode.ReadByte(src, ip)
		if err != nil {
			return 0, err
		}

		nr.cache = b
		nr.ready = false

		return nr.cache >> 4, nil
	}

	nr.ready = true

	return nr.cache & 0x0F, nil
}

// DecompressBlock decodes one LZSA2 block from src into dst, starting at
// dst[0] and src[0], and returns the number of output bytes written.
func DecompressBlock(dst, src []byte) (int, error) {
	n, _, err := DecompressBlockN(dst, src)
	return n, err
}

// DecompressBlockN decodes one LZSA2 block from src into dst and additionally
// reports the number of input bytes consumed through the block's EOD marker.
func DecompressBlockN(dst, src []byte) (outN, inN int, err error) {
	if len(src) == 0 {
		return 0, 0, lzsaerr.ErrEmptyInput
	}

	var ip, op int

	nr := newNibbleReader()
	lastOffset := 0

	for {
		token, rerr := decode.ReadByte(src, &ip)
		if rerr != nil {
			return op, ip, lzsaerr.Wrap(rerr, op)
		}

		litLen := int(token&tokenLitLenMask) >> tokenLitLenShift
		if litLen == litLenEscape {
			n, e := nr.next(src, &ip)
			if e != nil {
				return op, ip, lzsaerr.Wrap(e, op)
			}

			if n < 15 {
				litLen += int(n)
			} else {
				b, e := decode.ReadByte(src, &ip)
				if e != nil {
					return op, ip, lzsaerr.Wrap(e, op)
				}

				switch {
				case b <= 237:
					litLen += 15 + int(b)
				case b == 239:
					v, e := decode.ReadLE16(src, &ip)
					if e != nil {
						return op, ip, lzsaerr.Wrap(e, op)
					}

					litLen = int(v)
				default:
					// b == 238 (reserved, never emitted by the canonical encoder)
					// or 240..255: not a defined escape value.
					return op, ip, lzsaerr.Wrap(lzsaerr.ErrMalformedEscape, op)
				}
			}
		}

		if e := decode.CopyLiteral(src, &ip, dst, &op, litLen); e != nil {
			return op, ip, lzsaerr.Wrap(e, op)
		}

		offset, e := decodeOffset(src, &ip, &nr, token, lastOffset)
		if e != nil {
			return op, ip, lzsaerr.Wrap(e, op)
		}
		lastOffset = offset

		matchLen := int(token & tokenMatchLenMask)
		if matchLen == matchLenEscape {
			n, e := nr.next(src, &ip)
			if e != nil {
				return op, ip, lzsaerr.Wrap(e, op)
			}

			if n < 15 {
				matchLen += int(n) + matchLenMin
			} else {
				b, e := decode.ReadByte(src, &ip)
				if e != nil {
					return op, ip, lzsaerr.Wrap(e, op)
				}

				switch {
				case b <= 231:
					matchLen += 15 + matchLenMin + int(b)
				case b == 233:
					v, e := decode.ReadLE16(src, &ip)
					if e != nil {
						return op, ip, lzsaerr.Wrap(e, op)
					}

					matchLen = int(v)
				default:
					// Any other value (canonically 232, but 234..255 too per the
					// reference decoder) signals end-of-data.
					return op, ip, nil
				}
			}
		} else {
			matchLen += matchLenMin
		}

		if e := decode.CopyMatch(dst, op, offset, matchLen); e != nil {
			return op, ip, lzsaerr.Wrap(e, op)
		}

		op += matchLen
	}
}

// decodeOffset resolves the signed match offset for one command, given the
// token's offset-mode bits and the nibble stream, applying the repeat-last-
// offset rule for mode 16-bit when Z is set.
func decodeOffset(src []byte, ip *int, nr *nibbleReader, token byte, lastOffset int) (int, error) {
	mode := (token & tokenOffsetModeMask) >> tokenOffsetModeShift
	zBitSet := token&tokenZBit != 0

	switch mode {
	case offsetMode5Bit:
		n, err := nr.next(src, ip)
		if err != nil {
			return 0, err
		}

		v := uint16(n) << 1
		if !zBitSet {
			v |= 1
		}
		v |= 0xFFE0

		return int(int16(v)), nil

	case offsetMode9Bit:
		b, err := decode.ReadByte(src, ip)
		if err != nil {
			return 0, err
		}

		v := uint16(b)
		if !zBitSet {
			v |= 0x100
		}
		v |= 0xFE00

		return int(int16(v)), nil

	case offsetMode13Bit:
		n, err := nr.next(src, ip)
		if err != nil {
			return 0, err
		}

		b, err := decode.ReadByte(src, ip)
		if err != nil {
			return 0, err
		}

		v := uint16(n) << 9
		if !zBitSet {
			v |= 0x100
		}
		v |= uint16(b)
		v |= 0xE000

		return int(int16(v)) - 512, nil

	default: // offsetMode16Bit
		if !zBitSet {
			// Unlike every other multi-byte field in this format, the 16-bit
			// offset mode reads its high byte first, then its low byte.
			hi, err := decode.ReadByte(src, ip)
			if err != nil {
				return 0, err
			}

			lo, err := decode.ReadByte(src, ip)
			if err != nil {
				return 0, err
			}

			return int(int16(uint16(lo) | uint16(hi)<<8)), nil
		}

		return lastOffset, nil
	}
}
