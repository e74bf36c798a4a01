// Command docify is the entry point for the Docify Online medical FAQ
// assistant. It provides a CLI interface (via Cobra) and an optional HTTP
// server exposing the chat API consumed by the Docify web front-end.
package main

import (
	"fmt"
	"os"

	"github.com/docify-online/docify-go/cmd/docify/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
