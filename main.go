package main

import (
	"fmt"
	"os"

	"github.com/dcode-github/rental_listing_platform/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
