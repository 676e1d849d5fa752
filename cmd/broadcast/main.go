// Command broadcast runs event scripts and an interactive event REPL.
package main

import (
	"os"

	"github.com/tessro/broadcast/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
