package main

import (
	"os"

	"github.com/achen-archive/memoirsite/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
