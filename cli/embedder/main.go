package main

import (
	"os"

	embeddercmder "github.com/papercomputeco/embedder/cmd/embedder"
)

func main() {
	cmd := embeddercmder.NewEmbedderCmd()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
