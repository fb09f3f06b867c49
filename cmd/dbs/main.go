package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

var version = "dev"

func main() {
	c := newCLI(version)
	err := fang.Execute(context.Background(), c.rootCmd(), fang.WithVersion(version))
	_ = c.close()
	if err != nil {
		// fang already rendered the error.
		os.Exit(1)
	}
}
