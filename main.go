package main

import (
	"os"

	"github.com/kush2803/CatLearn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
