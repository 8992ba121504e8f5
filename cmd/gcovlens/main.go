package main

import (
	"fmt"
	"os"

	"github.com/zjy-dev/gcovlens/cmd/gcovlens/app"
)

func main() {
	if err := app.NewGcovlensCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
