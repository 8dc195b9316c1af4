package main

import (
	"fmt"
	"os"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
