// charprofile prints character profiles from BookNLP .book artifacts.
//
// Usage:
//
//	charprofile analyze <book_file> [--format text|markdown|table|json] [--out path]
//	charprofile batch <file>... | @list.txt [--output-dir dir] [--fail-fast]
//	charprofile config show|init
//	charprofile version
package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/charprofile/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
