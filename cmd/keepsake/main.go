package main

import (
	"os"

	"github.com/treloar/keepsake/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
