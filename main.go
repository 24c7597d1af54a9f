package main

import (
	"os"

	"github.com/sgalella/GeometricArt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
