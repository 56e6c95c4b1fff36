package main

import (
	"os"

	groundworkcmder "github.com/groundworkhq/groundwork/cmd/groundwork"
)

func main() {
	cmd := groundworkcmder.NewGroundworkCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
