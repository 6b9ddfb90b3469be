package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/irsense/pkg/cli/sh"
)

func init() {
	flag.Set("logtostderr", "true")
	sh.SetupFlags()
}

func main() {
	sh.Main()
}
