package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/robotalks/irsense/pkg/detector"
)

func init() {
	flag.Set("logtostderr", "true")
	detector.SetDefaultInterval(detector.DefaultNetworkInterval)
	detector.SetupFlags()
	flag.Usage = func() {
		printUsage(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [flags] <server_ip> <server_port>\n", filepath.Base(os.Args[0]))
}

// run expects exactly the two positional arguments and returns the exit code.
func run(args []string, stderr io.Writer) int {
	if len(args) != 2 {
		printUsage(stderr)
		return 1
	}
	return detector.NewConfig().WithTarget(args[0], args[1]).RunMain()
}

func main() {
	flag.Parse()
	code := run(flag.Args(), os.Stderr)
	glog.Flush()
	os.Exit(code)
}
