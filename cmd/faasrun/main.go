package main

import (
	"fmt"
	"os"

	"github.com/wudi/faasrun/internal/cliapp"
)

func main() {
	if err := cliapp.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
