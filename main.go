package main

import (
	"os"

	"github.com/rccmquiz/rccm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
