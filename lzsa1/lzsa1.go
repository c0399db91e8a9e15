// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/lzo (decompress.go state-machine shape),
// basilhussain/stm8-lzsa lzsa_ref.c (lzsa1_decompress_block_ref semantics)

/*
Package lzsa1 implements the LZSA1 block decoder.

LZSA1 is a byte-oriented LZ77 variant: each command is a token byte
carrying a literal-length seed and a match-length seed, optionally
extended by escape bytes, followed by a literal run and a signed match
offset. A block ends with a sentinel command whose escaped match length
decodes to zero.

	n, err := lzsa1.DecompressBlock(dst, compressed)
	out, err := lzsa1.Decompress(compressed, lzsa1.DefaultOptions(expectedLen))
*/
package lzsa1

import (
	"io"

	"github.com/basilhussain/stm8-lzsa/internal/decode"
	"github.com/basilhussain/stm8-lzsa/lzsaerr"
)

// LZSA1 token byte layout: bit 7 = 16-bit-offset flag; bits 6..4 =
// literal-length seed; bits 3..0 = match-length seed.
const (
	tokenOffsetFlagMask = 0x80
	tokenLitLenMask     = 0x70
	tokenLitLenShift    = 4
	tokenMatchLenMask   = 0x0F

	litLenEscape   = 7
	matchLenEscape = 15
	matchLenMin    = 3
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

// Decompress decompresses one LZSA1 block from src into a freshly allocated
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

// DecompressBlock decodes one LZSA1 block from src into dst, starting at
// dst[0] and src[0], and returns the number of output bytes written.
func DecompressBlock(dst, src []byte) (int, error) {
	n, _, err := DecompressBlockN(dst, src)
	return n, err
}

// DecompressBlockN decodes one LZSA1 block from src into dst and additionally
// reports the number of input bytes consumed through the block's EOD marker,
// so the caller can advance to a following block in the same stream.
func DecompressBlockN(dst, src []byte) (outN, inN int, err error) {
	if len(src) == 0 {
		return 0, 0, lzsaerr.ErrEmptyInput
	}

	var ip, op int

	for {
		token, rerr := decode.ReadByte(src, &ip)
		if rerr != nil {
			return op, ip, lzsaerr.Wrap(rerr, op)
		}

		litLen := int(token&tokenLitLenMask) >> tokenLitLenShift
		if litLen == litLenEscape {
			n, e := decode.ReadByte(src, &ip)
			if e != nil {
				return op, ip, lzsaerr.Wrap(e, op)
			}

			switch n {
			case 250:
				a, e := decode.ReadByte(src, &ip)
				if e != nil {
					return op, ip, lzsaerr.Wrap(e, op)
				}

				litLen = 256 + int(a)
			case 249:
				v, e := decode.ReadLE16(src, &ip)
				if e != nil {
					return op, ip, lzsaerr.Wrap(e, op)
				}

				litLen = int(v)
			default:
				litLen += int(n)
			}
		}

		if e := decode.CopyLiteral(src, &ip, dst, &op, litLen); e != nil {
			return op, ip, lzsaerr.Wrap(e, op)
		}

		lo, e := decode.ReadByte(src, &ip)
		if e != nil {
			return op, ip, lzsaerr.Wrap(e, op)
		}

		var offset int
		if token&tokenOffsetFlagMask != 0 {
			hi, e := decode.ReadByte(src, &ip)
			if e != nil {
				return op, ip, lzsaerr.Wrap(e, op)
			}

			offset = int(int16(uint16(lo) | uint16(hi)<<8))
		} else {
			offset = int(int16(0xFF00 | uint16(lo)))
		}

		matchLen := int(token & tokenMatchLenMask)
		if matchLen == matchLenEscape {
			n, e := decode.ReadByte(src, &ip)
			if e != nil {
				return op, ip, lzsaerr.Wrap(e, op)
			}

			switch {
			case n == 238:
				v, e := decode.ReadLE16(src, &ip)
				if e != nil {
					return op, ip, lzsaerr.Wrap(e, op)
				}

				if v == 0 {
					// End-of-data: the final literal run (if any) has already
					// been copied above; no match follows.
					return op, ip, nil
				}

				matchLen = int(v)

			case n == 239:
				a, e := decode.ReadByte(src, &ip)
				if e != nil {
					return op, ip, lzsaerr.Wrap(e, op)
				}

				matchLen = 256 + int(a)

			default:
				matchLen = matchLenEscape + matchLenMin + int(n)
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
