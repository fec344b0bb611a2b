// Command beatgrid records and maintains per-scene beat timestamps.
package main

import (
	"context"
	"os"

	"github.com/roach88/beatgrid/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
