// Command flowview shows the live status of workflow executions, either as
// a web page (`flowview serve`) or as a terminal table (`flowview watch`).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
