// ards-game-to-xml converts games at known offsets of an Action Replay DS
// dump to a code list.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"ardsutil/cursor"
	"ardsutil/export"
	"ardsutil/models"
	"ardsutil/parser"
	"ardsutil/utils"
)

var (
	asJSON  = flag.Bool("json", false, "write JSON instead of XML")
	strict  = flag.Bool("strict", false, "validate each code section and fail on the first malformed record")
	legacy  = flag.Bool("legacy", false, "decode flags with the legacy raw-value layout")
	charset = flag.String("charset", "", "charset of stored names (WHATWG name, e.g. shift_jis)")
)

type config struct {
	json    bool
	strict  bool
	legacy  bool
	charset string
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-json] [-strict] [-legacy] [-charset NAME] IN_ARDS.nds HEX_OFFSET...\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config{json: *asJSON, strict: *strict, legacy: *legacy, charset: *charset}
	if err := run(afero.NewOsFs(), flag.Arg(0), flag.Args()[1:], cfg, os.Stdout); err != nil {
		glog.Fatalf("Failed to convert %s: %v", flag.Arg(0), err)
	}
}

// parseOffset accepts hex with or without a 0x prefix.
func parseOffset(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return int64(v), nil
}

func run(fs afero.Fs, filename string, offsets []string, cfg config, w io.Writer) error {
	text, err := parser.NewTextDecoder(cfg.charset)
	if err != nil {
		return err
	}
	p := parser.Parser{Strict: cfg.strict, Text: text}
	if cfg.legacy {
		p.Encoding = models.Legacy
	}

	positions := make([]int64, 0, len(offsets))
	for _, s := range offsets {
		pos, err := parseOffset(s)
		if err != nil {
			return err
		}
		positions = append(positions, pos)
	}

	rom, err := utils.LoadROM(fs, filename)
	if err != nil {
		return err
	}
	c := cursor.FromBytes(rom)

	games := make([]*models.Game, 0, len(positions))
	for _, pos := range positions {
		g, err := p.ReadGame(c, pos)
		if err != nil {
			return err
		}
		for _, warning := range g.Warnings {
			glog.Warningf("0x%08x: %s", pos, warning)
		}
		games = append(games, g)
	}

	// an offset given twice is written once
	games = export.Deduplicate(games)
	if cfg.json {
		return export.WriteJSON(w, games)
	}
	return export.WriteXML(w, games)
}
