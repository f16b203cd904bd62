// ards-mem-eval compares the 1 MiB regions of a 16 MiB ARDS dump.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"ardsutil/firmware"
	"ardsutil/utils"
)

// Exit codes.
const (
	exitSame = iota
	exitDifferent
	exitSize
	exitIO
)

var quick = flag.Bool("q", false, "quick and quiet: compare neighbouring regions only and print nothing")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-q] IN_ARDS.nds\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Memory evaluation utility for an Action Replay DS ROM dump.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	code := run(afero.NewOsFs(), flag.Arg(0), *quick, os.Stdout, os.Stderr)
	glog.Flush()
	os.Exit(code)
}

func run(fs afero.Fs, filename string, quick bool, stdout, stderr io.Writer) int {
	dump, err := utils.LoadROM(fs, filename)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitIO
	}

	chunks, err := firmware.SplitChunks(dump)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSize
	}

	if quick {
		if firmware.LinearCheck(chunks) != 0 {
			return exitDifferent
		}
		return exitSame
	}

	table := firmware.SquareCheck(chunks)
	if err := printTable(stdout, table); err != nil {
		glog.Errorf("failed to print table: %v", err)
		return exitIO
	}
	if firmware.Differs(table) {
		return exitDifferent
	}
	return exitSame
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}

// printTable draws table[i][j] with a row and column per region.
func printTable(w io.Writer, table [][]int) error {
	if len(table) == 0 {
		return errors.New("empty table")
	}
	ew := &errWriter{w: w}

	ew.printf("    | ")
	for i := range table {
		ew.printf("  %2d%s", i, sep(i, len(table), " "))
	}
	ew.printf("----+-")
	for i := range table {
		ew.printf("----%s", sep(i, len(table), "-"))
	}

	for i, row := range table {
		ew.printf(" %2d | ", i)
		for j, v := range row {
			ew.printf("%4d%s", v, sep(j, len(row), " "))
		}
	}
	return ew.err
}

func sep(i, n int, between string) string {
	if i == n-1 {
		return "\n"
	}
	return between
}
