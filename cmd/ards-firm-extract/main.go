// ards-firm-extract writes the firmware image of an ARDS dump, with its
// "FIRM" header, to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"ardsutil/firmware"
	"ardsutil/utils"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s ARDS_IN.nds > FIRMWARE_OUT.bin\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(afero.NewOsFs(), flag.Arg(0), os.Stdout); err != nil {
		glog.Errorf("%s: %v", flag.Arg(0), err)
		glog.Flush()
		os.Exit(2)
	}
}

func run(fs afero.Fs, filename string, w io.Writer) error {
	dump, err := utils.LoadROM(fs, filename)
	if err != nil {
		return err
	}

	image, err := firmware.Extract(dump)
	if err != nil {
		return err
	}
	glog.V(1).Infof("firmware is %d bytes, checksum %04X", len(image), firmware.Checksum(image, nil))

	if _, err := w.Write(firmware.Build(image, nil)); err != nil {
		return fmt.Errorf("failed to write firmware: %w", err)
	}
	return nil
}
