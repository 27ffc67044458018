// The main package for the netra backend executable.
package main

import (
	"github.com/netra-news/backend/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
