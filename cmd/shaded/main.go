// Package main provides the entry point for the shaded shaderpack packager.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
