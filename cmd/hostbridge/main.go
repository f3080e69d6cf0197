package main

import (
	"fmt"
	"os"

	"github.com/wippyai/hostbridge/internal/cli"
	_ "github.com/wippyai/hostbridge/internal/demo"
	"github.com/wippyai/hostbridge/registry"
)

func main() {
	if err := cli.NewRootCommand(registry.Default()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
