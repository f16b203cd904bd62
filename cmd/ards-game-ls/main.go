// ards-game-ls lists the games found in an Action Replay DS dump.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"ardsutil/cursor"
	"ardsutil/models"
	"ardsutil/parser"
	"ardsutil/rescue"
	"ardsutil/utils"
)

var (
	showDuplicates = flag.Bool("d", false, "also list games whose ID was already found")
	showErrors     = flag.Bool("e", false, "print rejected candidates to stderr")
	skipNames      = flag.Bool("n", false, "do not walk past code names; look for the next game inside them")
	rescueMode     = flag.Bool("r", false, "rescue mode: try every byte offset instead of stopping at the first position without a game")
	showWarnings   = flag.Bool("w", false, "print warnings, such as suppressed duplicates, to stderr")
	resync         = flag.Bool("resync", false, "snap positions below 0x54000 in each megabyte up to 0x54000")
	legacy         = flag.Bool("legacy", false, "decode flags with the legacy raw-value layout")
	charset        = flag.String("charset", "", "charset of stored names (WHATWG name, e.g. shift_jis)")
)

type config struct {
	duplicates bool
	errors     bool
	skipNames  bool
	rescue     bool
	warnings   bool
	resync     bool
	legacy     bool
	charset    string
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-d] [-e] [-n] [-r] [-w] [-resync] [-legacy] [-charset NAME] IN_ARDS.nds\n", os.Args[0])
	fmt.Fprintln(flag.CommandLine.Output(), "Listing utility for game addresses in an Action Replay DS ROM dump.")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	cfg := config{
		duplicates: *showDuplicates,
		errors:     *showErrors,
		skipNames:  *skipNames,
		rescue:     *rescueMode,
		warnings:   *showWarnings,
		resync:     *resync,
		legacy:     *legacy,
		charset:    *charset,
	}
	if err := run(afero.NewOsFs(), flag.Arg(0), cfg, os.Stdout, os.Stderr); err != nil {
		glog.Fatalf("Failed to list %s: %v", flag.Arg(0), err)
	}
}

func (cfg config) options() (rescue.Options, error) {
	text, err := parser.NewTextDecoder(cfg.charset)
	if err != nil {
		return rescue.Options{}, err
	}

	opts := rescue.DefaultOptions()
	opts.Text = text
	opts.AllowDuplicates = cfg.duplicates
	opts.SkipNames = cfg.skipNames
	if !cfg.resync {
		opts.Resync = rescue.NoResync{}
	}
	opts.Policy = rescue.Sequential
	if cfg.rescue {
		opts.Policy = rescue.BruteForce
	}
	if cfg.legacy {
		opts.Encoding = models.Legacy
	}
	return opts, nil
}

func run(fs afero.Fs, filename string, cfg config, stdout, stderr io.Writer) error {
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	if cfg.errors {
		opts.Rejected = func(pos int64, err error) {
			reportRejected(stderr, pos, err)
		}
	}
	if cfg.warnings {
		opts.Duplicate = func(f rescue.Finding) {
			fmt.Fprintf(stderr, "Warning 0x%08x: %s (%s) already found at 0x%08x\n", f.Offset, f.ID, f.Name, f.FirstSeen)
		}
	}

	rom, err := utils.LoadROM(fs, filename)
	if err != nil {
		return err
	}

	s := rescue.New(cursor.FromBytes(rom), opts)
	for {
		f, err := s.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if f.Duplicate {
			fmt.Fprintf(stdout, "0x%08x - %s (duplicate of 0x%08x)\n", f.Offset, f.Name, f.FirstSeen)
			continue
		}
		fmt.Fprintf(stdout, "0x%08x - %s\n", f.Offset, f.Name)
	}
}

// reportRejected prints the candidate position and the error location
// relative to it.
func reportRejected(w io.Writer, pos int64, err error) {
	var fe *models.FormatError
	if !errors.As(err, &fe) {
		fmt.Fprintf(w, "Error 0x%08x: %v\n", pos, err)
		return
	}
	if fe.Kind == models.InvalidFlag {
		fmt.Fprintf(w, "Error 0x%08x + 0x%08x: %s (%d)\n", pos, fe.Offset-pos, fe.Kind, fe.Value)
		return
	}
	fmt.Fprintf(w, "Error 0x%08x + 0x%08x: %s\n", pos, fe.Offset-pos, fe.Kind)
}
