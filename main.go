package main

import (
	"os"

	"github.com/neflyte/seoredirect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
