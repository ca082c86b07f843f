// Package main provides the SeqNet CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("SeqNet %s\n", version)
		return
	}

	fmt.Println("SeqNet - Recurrent Neural Networks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("See examples/timeseries for a training walkthrough.")
}
