package main

import (
	"os"

	"github.com/gobindep/gobindep/cmd/gobindep/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
