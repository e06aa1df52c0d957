package main

import (
	"os"

	"github.com/talent-scout/scout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
