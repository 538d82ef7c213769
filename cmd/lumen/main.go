// oreon/lumen · watchthelight <wtl>

package main

import (
	"os"

	"github.com/oreonproject/lumen/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
