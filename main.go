package main

import (
	"os"

	"github.com/folio-site/folio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
