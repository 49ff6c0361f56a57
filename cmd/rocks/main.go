package main

import (
	"fmt"
	"os"

	"github.com/JulienPeloton/rocks/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
