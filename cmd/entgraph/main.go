// Command entgraph builds entity graphs from question/answer documents.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/brunobiangulo/entgraph"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, entgraph.ErrMissingInput) {
			fmt.Fprintln(os.Stderr, "Hint: pass --input or set ENTGRAPH_INPUT to an existing document.")
			os.Exit(2)
		}
		os.Exit(1)
	}
}
