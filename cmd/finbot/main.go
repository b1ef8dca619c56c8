package main

import (
	"fmt"
	"os"

	corecmd "github.com/m3rciful/finbot/core/cmd"
	"github.com/m3rciful/finbot/internal/app"
)

func main() {
	// Configuration comes from the environment (plus .env); CONFIG_PATH
	// points at an optional YAML layer underneath it.
	err := corecmd.Run(corecmd.Options{
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "finbot:", err)
		os.Exit(1)
	}
}
