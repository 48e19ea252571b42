package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gi8lino/jirasearch/internal/app"
)

var (
	Version string = "dev"
	Commit  string = "none"
)

func main() {
	ctx := context.Background()

	if err := app.Run(ctx, Version, Commit, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err) // nolint:errcheck
		os.Exit(1)
	}
}
