// Command qplan compiles and runs collection queries against SQLite.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qplan/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
