// Command sample runs the demonstration entry point of the prism
// validation fixture.
package main

import (
	"os"

	"prism/pkg/sample"
)

func main() {
	sample.Demo(os.Stdout)
}
