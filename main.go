package main

import (
	"os"

	"github.com/aniquiz/aniquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
