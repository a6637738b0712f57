package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// A canceled context is the normal interrupt path, not a failure worth
	// repeating on stderr.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "stylus:", err)
	}
	os.Exit(1)
}
