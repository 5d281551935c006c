package main

import (
	"os"

	"github.com/bnema/tabbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
