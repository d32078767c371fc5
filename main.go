package main

import (
	"os"

	"github.com/braheezy/gcdsp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
