// Command pdfxref inspects the cross-reference structure of a PDF file.
//
//	pdfxref [-v] [-trailer] [-obj N [-deep] [-dump]] file.pdf
//
// Without -obj it lists every cross-reference entry.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/midbel/hexdump"
	"golang.org/x/term"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/logging"
	"github.com/tsawler/pdfxref/reader"
)

// ttyDumpLimit caps a stream dump written to a terminal.
const ttyDumpLimit = 1024

type config struct {
	verbose  bool
	trailer  bool
	obj      int
	deep     bool
	dump     bool
	full     bool
	tempCopy bool
	file     string
}

func main() {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, tty))
}

func run(args []string, stdout, stderr io.Writer, tty bool) int {
	fs := flag.NewFlagSet("pdfxref", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config
	fs.BoolVar(&cfg.verbose, "v", false, "log debug messages to stderr")
	fs.BoolVar(&cfg.trailer, "trailer", false, "print the trailer dictionary")
	fs.IntVar(&cfg.obj, "obj", -1, "print object `N`")
	fs.BoolVar(&cfg.deep, "deep", false, "resolve references inside the object")
	fs.BoolVar(&cfg.dump, "dump", false, "hex dump the decoded data of a stream object")
	fs.BoolVar(&cfg.full, "full", false, "do not truncate dumps written to a terminal")
	fs.BoolVar(&cfg.tempCopy, "tmp", false, "read from a temporary copy of the file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: pdfxref [flags] file.pdf")
		fs.PrintDefaults()
		return 2
	}
	cfg.file = fs.Arg(0)

	if cfg.verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := inspect(cfg, stdout, tty); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func inspect(cfg config, w io.Writer, tty bool) error {
	var opts []reader.Option
	if cfg.tempCopy {
		opts = append(opts, reader.WithTempCopy())
	}
	doc, err := reader.Open(cfg.file, opts...)
	if err != nil {
		return err
	}
	defer doc.Close()

	switch {
	case cfg.obj >= 0:
		return printObject(w, doc, cfg, tty)
	case cfg.trailer:
		fmt.Fprintf(w, "PDF-%s\n", doc.Version())
		fmt.Fprintln(w, doc.Trailer())
		return nil
	default:
		printTable(w, doc.XRefTable())
		return nil
	}
}

func printTable(w io.Writer, table *core.XRefTable) {
	fmt.Fprintf(w, "PDF-%s, %d entries\n", table.Version, table.Size())
	for _, num := range table.Numbers() {
		e, _ := table.Get(num)
		switch {
		case !e.InUse:
			fmt.Fprintf(w, "%6d %5d free\n", e.Number, e.Generation)
		case e.Compressed():
			fmt.Fprintf(w, "%6d %5d in %d[%d]\n", e.Number, e.Generation, e.Stream, e.Index)
		default:
			fmt.Fprintf(w, "%6d %5d at %d\n", e.Number, e.Generation, e.Offset)
		}
	}
}

func printObject(w io.Writer, doc *reader.Reader, cfg config, tty bool) error {
	obj, err := doc.GetObject(cfg.obj)
	if err != nil {
		return err
	}
	if cfg.deep {
		if obj, err = doc.ResolveDeep(obj); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "%d: %s %s\n", cfg.obj, obj.Type(), obj)

	if !cfg.dump {
		return nil
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return errors.New("-dump needs a stream object")
	}
	data, err := stream.Decode()
	if err != nil {
		return err
	}
	rest := 0
	if tty && !cfg.full && len(data) > ttyDumpLimit {
		rest = len(data) - ttyDumpLimit
		data = data[:ttyDumpLimit]
	}
	fmt.Fprintln(w, hexdump.Dump(data))
	if rest > 0 {
		fmt.Fprintf(w, "... %d more bytes, use -full\n", rest)
	}
	return nil
}
