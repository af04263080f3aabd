package main

import (
	"fmt"
	"os"

	"github.com/sprite-ai/autotag/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "autotag:", err)
		os.Exit(1)
	}
}
