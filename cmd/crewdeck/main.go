package main

import (
	"os"

	"github.com/ksteinfeldt/crewdeck/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
