// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/lzo (errors.go, generalized for LZSA1/LZSA2)

// Package lzsaerr holds the sentinel errors and the DecodeError wrapper
// shared by the lzsa1 and lzsa2 block decoders.
package lzsaerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for block decoding. Match against these with errors.Is.
var (
	// ErrInputOverrun is returned when a read would advance past the end of the compressed buffer.
	ErrInputOverrun = errors.New("lzsa: input overrun")
	// ErrOutputOverrun is returned when a write would advance past the end of the output buffer.
	ErrOutputOverrun = errors.New("lzsa: output overrun")
	// ErrLookBehindUnderrun is returned when a match offset would read before the start of the output.
	ErrLookBehindUnderrun = errors.New("lzsa: lookbehind underrun")
	// ErrMalformedEscape is returned when an escape byte/nibble takes a reserved, undefined value.
	ErrMalformedEscape = errors.New("lzsa: malformed escape")
	// ErrOutLenRequired is returned when Decompress is called with a nil/negative Options.OutLen.
	ErrOutLenRequired = errors.New("lzsa: options required: OutLen must be set")
	// ErrEmptyInput is returned when the compressed input is empty.
	ErrEmptyInput = errors.New("lzsa: empty input")
	// ErrInputTooLarge is returned when DecompressFromReader reads more than Options.MaxInputSize bytes.
	ErrInputTooLarge = errors.New("lzsa: input exceeds MaxInputSize")
)

// DecodeError wraps a sentinel error with the output cursor reached before
// the failure, so a caller can inspect partial progress: the error kind and
// the number of output bytes already written.
type DecodeError struct {
	Err    error // one of the sentinel errors above
	Offset int   // output bytes written before the error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (after %d output bytes)", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Wrap builds a *DecodeError for err (nil-safe: returns nil if err is nil).
func Wrap(err error, outOffset int) error {
	if err == nil {
		return nil
	}

	return &DecodeError{Err: err, Offset: outOffset}
}
