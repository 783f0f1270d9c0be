package main

import (
	"os"

	"github.com/ozzus/cocoplanner/cmd/cocoplanner/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
