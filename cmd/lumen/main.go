package main

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"

	"github.com/dwelltrack/lumen/internal/cli"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0-dev"

func main() {
	if err := cli.Run(version); err != nil {
		// go-flags already printed parse errors.
		var flagsErr *goflags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		}
		os.Exit(1)
	}
}
