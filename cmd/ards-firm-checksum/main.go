// ards-firm-checksum prints the CRC-16 of an ARDS firmware file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"ardsutil/firmware"
)

var verify = flag.Bool("verify", false, "compare against the checksum stored in the file header")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-verify] ARDS_FIRMWARE.bin\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(afero.NewOsFs(), flag.Arg(0), *verify, os.Stdout); err != nil {
		glog.Errorf("%s: %v", flag.Arg(0), err)
		glog.Flush()
		os.Exit(2)
	}
}

func run(fs afero.Fs, filename string, verify bool, w io.Writer) error {
	file, err := afero.ReadFile(fs, filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if verify {
		_, computed, err := firmware.Verify(file, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%04X OK\n", computed)
		return nil
	}

	sum, err := firmware.FileChecksum(file, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%04X\n", sum)
	return nil
}
