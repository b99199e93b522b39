package main

import (
	"os"

	"github.com/tuteke2023/bankparse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
