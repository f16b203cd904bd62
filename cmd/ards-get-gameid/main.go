// ards-get-gameid prints the Action Replay identifier of a Nintendo DS ROM.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"ardsutil/checksum"
	"ardsutil/utils"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s NDS_IN\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(afero.NewOsFs(), flag.Arg(0), os.Stdout); err != nil {
		glog.Fatalf("Failed to compute game ID: %v", err)
	}
}

func run(fs afero.Fs, filename string, w io.Writer) error {
	head, err := utils.ReadHead(fs, filename, checksum.GameIDSpan)
	if err != nil {
		return err
	}
	id, err := checksum.NDSGameID(head)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, id)
	return err
}
