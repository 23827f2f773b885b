package main

import (
	"os"

	"github.com/keywinf/relay-stack/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
