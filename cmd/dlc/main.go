package main

import (
	"os"

	"github.com/4chain-ag/go-dlc-settlement/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
