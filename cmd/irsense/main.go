package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/irsense/pkg/detector"
)

func init() {
	flag.Set("logtostderr", "true")
	detector.SetupFlags()
}

func main() {
	flag.Parse()
	code := detector.NewConfig().RunMain()
	glog.Flush()
	os.Exit(code)
}
