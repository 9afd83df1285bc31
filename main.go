package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hal/testhound/cmd"
	"github.com/hal/testhound/internal/pipeline"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		if errors.Is(err, pipeline.ErrInterrupted) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
