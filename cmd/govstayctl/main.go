package main

import (
	"fmt"
	"os"

	"govstay-server/scripts"
)

func main() {
	if err := scripts.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "govstayctl:", err)
		os.Exit(1)
	}
}
