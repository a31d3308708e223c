package main

import (
	"os"

	"github.com/irislabs/irisctl/cmd/irisctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
