package main

import (
	"os"

	"github.com/shibaleo/repomcp/internal/cli"
)

func main() {
	if err := cli.New().Run(os.Args); err != nil {
		os.Exit(1)
	}
}
