package main

import (
	"os"

	"github.com/zhubert/aic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
