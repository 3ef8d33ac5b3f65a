package main

import (
	"os"

	"github.com/PinkDiamond1/blob-simulation/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
