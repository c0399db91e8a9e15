package lzsa1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildOverlapBlock encodes a literal preamble of exactly `offset` bytes,
// followed by a single match of the given length referencing that preamble,
// terminated by EOD. Since match_src = out_cursor + (-offset), a preamble of
// at least `offset` bytes guarantees the match never reads before the start
// of the output.
func buildOverlapBlock(t *testing.T, preamble []byte, length int) []byte {
	t.Helper()

	offset := len(preamble)
	require.Greater(t, offset, 0)
	require.LessOrEqual(t, offset, 256, "offset must fit the single-byte form")

	litLen := offset
	lo := byte((-offset) & 0xFF)

	out := make([]byte, 0, litLen+16)

	var litToken byte
	switch {
	case litLen < litLenEscape:
		litToken = byte(litLen)
		out = append(out, litToken<<4)
	case litLen-litLenEscape <= 248:
		out = append(out, litLenEscape<<4, byte(litLen-litLenEscape))
	default:
		out = append(out, litLenEscape<<4, 249, byte(litLen), byte(litLen>>8))
	}
	out = append(out, preamble...)

	token := out[0]
	out = append(out, lo)

	switch {
	case length-matchLenMin < matchLenEscape:
		out[0] = token | byte(length-matchLenMin)

	case length-matchLenEscape-matchLenMin <= 237:
		out[0] = token | byte(matchLenEscape)
		out = append(out, byte(length-matchLenEscape-matchLenMin))

	case length <= 511:
		out[0] = token | byte(matchLenEscape)
		out = append(out, 239, byte(length-256))

	default:
		out[0] = token | byte(matchLenEscape)
		out = append(out, 238, byte(length), byte(length>>8))
	}

	// EOD: a fresh command whose token is L=0,M=15 (escape), offset byte
	// (value irrelevant since no match is copied), then escape 238 and a
	// 16-bit length of 0.
	out = append(out, 0x0F, 0x00, 238, 0x00, 0x00)

	return out
}

func TestOverlapRunLengthExpansion_Property(t *testing.T) {
	cases := []struct {
		offset, length int
	}{
		{1, 5},
		{1, 64},
		{3, 10},
		{3, 300},
		{7, 7},
		{200, 600},
	}

	for _, c := range cases {
		preamble := make([]byte, c.offset)
		for i := range preamble {
			preamble[i] = byte('a' + i%26)
		}

		src := buildOverlapBlock(t, preamble, c.length)

		want := append([]byte{}, preamble...)
		for len(want) < c.offset+c.length {
			want = append(want, want[len(want)-c.offset])
		}

		dst := make([]byte, len(want))
		n, err := DecompressBlock(dst, src)
		require.NoError(t, err)
		require.Equal(t, want, dst[:n])
	}
}
