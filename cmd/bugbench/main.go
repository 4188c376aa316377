package main

import (
	"os"

	"github.com/dshills/bugbench/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
