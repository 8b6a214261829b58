package main

import (
	"context"
	"fmt"
	"os"
)

const version = "1.0.0-alpha1"

func main() {
	ctx := context.Background()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
