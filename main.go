// The main package for the coinhist executable.
package main

import (
	"github.com/coinhist/coin-history-crawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
