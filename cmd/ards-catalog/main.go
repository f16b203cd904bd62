// ards-catalog scans ARDS dumps and records the games it finds in a SQLite
// database, or looks games up in one.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"ardsutil/cursor"
	"ardsutil/models"
	"ardsutil/rescue"
	"ardsutil/utils"
)

const databaseFilename = "ards_catalog.sqlite"

var (
	databasePath = flag.String("db", databaseFilename, "path to the catalog database")
	lookup       = flag.String("lookup", "", "print catalogued games with this ID (XXXX-XXXXXXXX) and exit")
	lookupName   = flag.String("name", "", "print catalogued games whose name contains this text and exit")
	fresh        = flag.Bool("fresh", false, "delete the database before scanning")
	jobs         = flag.Int("j", runtime.NumCPU(), "dumps scanned in parallel")
)

// dumpExts are the file names picked up when a directory is given.
var dumpExts = map[string]bool{
	".nds": true, ".bin": true, ".zip": true, ".7z": true, ".rar": true,
	".gz": true, ".xz": true, ".lz4": true, ".zst": true,
}

// scanResult is everything found in one dump.
type scanResult struct {
	path    string
	sha1    string
	entries []models.CatalogEntry
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-db PATH] [-fresh] [-j N] ROM_OR_DIR...\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "       %s [-db PATH] -lookup ID | -name TEXT\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	fs := afero.NewOsFs()

	if *fresh {
		fs.Remove(*databasePath)
	}

	db, err := utils.InitDB(*databasePath)
	if err != nil {
		glog.Fatalf("Failed to open catalog: %v", err)
	}
	defer utils.CloseDB()

	switch {
	case *lookup != "":
		entries, err := utils.FindByIdentifier(db, models.GameID(*lookup))
		if err != nil {
			glog.Fatalf("Lookup failed: %v", err)
		}
		printEntries(os.Stdout, entries)
	case *lookupName != "":
		entries, err := utils.FindByName(db, *lookupName)
		if err != nil {
			glog.Fatalf("Lookup failed: %v", err)
		}
		printEntries(os.Stdout, entries)
	default:
		if flag.NArg() == 0 {
			flag.Usage()
			os.Exit(1)
		}
		if err := populateDB(context.Background(), fs, db, flag.Args(), *jobs, os.Stdout); err != nil {
			glog.Fatalf("Failed to build catalog: %v", err)
		}
	}
}

func printEntries(w io.Writer, entries []models.CatalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No games found")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  0x%08x  %-40s %3d codes  %s\n", e.Identifier, e.Offset, e.Name, e.NumCodes, e.ROMSHA1)
	}
}

// findDumps expands directories into the dumps they contain.
func findDumps(fs afero.Fs, args []string) ([]string, error) {
	var dumps []string
	for _, arg := range args {
		info, err := fs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			dumps = append(dumps, arg)
			continue
		}

		err = afero.Walk(fs, arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && dumpExts[strings.ToLower(filepath.Ext(path))] {
				dumps = append(dumps, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find dumps in %s: %w", arg, err)
		}
	}
	return dumps, nil
}

// scanDump runs the rescue scanner over one dump.
func scanDump(fs afero.Fs, path string) (scanResult, error) {
	rom, err := utils.LoadROM(fs, path)
	if err != nil {
		return scanResult{}, err
	}

	res := scanResult{path: path, sha1: utils.CalculateHash(rom)}
	findings, err := rescue.New(cursor.FromBytes(rom), rescue.DefaultOptions()).All()
	if err != nil {
		return res, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	for _, f := range findings {
		res.entries = append(res.entries, models.CatalogEntry{
			Identifier:  f.ID,
			Offset:      f.Offset,
			Name:        f.Name,
			Description: f.Description,
			CartID:      f.Header.CartID(),
			Checksum:    f.Header.Checksum,
			NumCodes:    int(f.Header.NumCodes),
		})
	}
	return res, nil
}

// populateDB scans the dumps in parallel and stores the results one dump
// at a time.
func populateDB(ctx context.Context, fs afero.Fs, db *sql.DB, args []string, jobs int, w io.Writer) error {
	dumps, err := findDumps(fs, args)
	if err != nil {
		return err
	}
	if len(dumps) == 0 {
		return errors.New("no dumps found")
	}
	fmt.Fprintf(w, "Found %d dumps\n", len(dumps))

	results := make([]scanResult, len(dumps))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range dumps {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := scanDump(fs, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	totalGames := 0
	for _, res := range results {
		fmt.Fprintf(w, "Processing %s...\n", res.path)

		scan, err := utils.NewScan(db, res.path, res.sha1)
		if err != nil {
			return err
		}
		added, err := utils.InsertGames(db, scan, res.entries)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Found %d games in %s, %d new\n", len(res.entries), filepath.Base(res.path), added)
		totalGames += added
	}

	fmt.Fprintf(w, "Successfully inserted %d total games into database\n", totalGames)
	return nil
}
