// Command lzsadec decodes a single LZSA1 or LZSA2 compressed block from a
// file and writes the decompressed bytes to another file. It is a thin
// consumer of the lzsa1/lzsa2 packages; it contains no decoder logic of its
// own.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/basilhussain/stm8-lzsa/lzsa1"
	"github.com/basilhussain/stm8-lzsa/lzsa2"
	"github.com/basilhussain/stm8-lzsa/lzsaerr"

	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	flagSet := flag.NewFlagSet("lzsadec", flag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)
	flagSet.Usage = func() {
		w := flagSet.Output()
		fprintf(w, "Usage: lzsadec --format lzsa1|lzsa2 --in <path> --out <path> --size <n>\n\n")
		fprintf(w, "Decodes one compressed block into a file of the given decompressed size.\n\n")
		flagSet.PrintDefaults()
	}

	format := flagSet.String("format", "", "block format: lzsa1 or lzsa2")
	inPath := flagSet.StringP("in", "i", "", "path to the compressed input block")
	outPath := flagSet.StringP("out", "o", "", "path to write the decompressed output")
	size := flagSet.Int("size", 0, "expected decompressed size in bytes")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	switch *format {
	case "lzsa1", "lzsa2":
	default:
		logger.Error("unknown or missing --format", "format", *format)
		flagSet.Usage()

		return 2
	}

	if *inPath == "" || *outPath == "" {
		logger.Error("--in and --out are both required")
		flagSet.Usage()

		return 2
	}

	if *size <= 0 {
		logger.Error("--size must be a positive integer", "size", *size)
		flagSet.Usage()

		return 2
	}

	src, err := os.ReadFile(*inPath)
	if err != nil {
		logger.Error("reading input", "path", *inPath, "err", err)

		return 1
	}

	var out []byte

	switch *format {
	case "lzsa1":
		out, err = lzsa1.Decompress(src, lzsa1.DefaultOptions(*size))
	case "lzsa2":
		out, err = lzsa2.Decompress(src, lzsa2.DefaultOptions(*size))
	}

	if err != nil {
		logDecodeError(logger, *format, err)

		return 1
	}

	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		logger.Error("writing output", "path", *outPath, "err", err)

		return 1
	}

	logger.Info("decoded block", "format", *format, "bytes", len(out))

	return 0
}

// logDecodeError reports the error kind and the output cursor reached
// before failure, using *lzsaerr.DecodeError when the underlying decoder
// made partial progress.
func logDecodeError(logger *slog.Logger, format string, err error) {
	var decErr *lzsaerr.DecodeError
	if errors.As(err, &decErr) {
		logger.Error("decode failed", "format", format, "kind", decErr.Err, "output_offset", decErr.Offset)

		return
	}

	logger.Error("decode failed", "format", format, "err", err)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
