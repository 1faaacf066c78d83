// Command canongen generates canonical forms for //canon:derive types.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/canon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "canongen: %v\n", err)
		os.Exit(1)
	}
}
