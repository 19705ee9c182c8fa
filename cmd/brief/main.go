package main

import (
	"os"

	"github.com/wonny/marketbrief/cmd/brief/commands"
)

// main is the entry point for the marketbrief CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
