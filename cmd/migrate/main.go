package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(openPostgres).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
