package main

import (
	"os"

	"github.com/evolvesmith/evolvesmith/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
