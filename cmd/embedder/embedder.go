// Package embeddercmder
package embeddercmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/embedder/cmd/embedder/config"
	servecmder "github.com/papercomputeco/embedder/cmd/embedder/serve"
	versioncmder "github.com/papercomputeco/embedder/cmd/version"
)

const embedderLongDesc string = `Embedder turns batches of text into fixed-dimension vectors using a
preloaded embedding model.

Run the service using:
  embedder serve       Run the embedding HTTP service

Manage configuration using:
  embedder config set <key> <value>
  embedder config get <key>
  embedder config list`

const embedderShortDesc string = "Embedder - sentence embedding service"

func NewEmbedderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embedder",
		Short: embedderShortDesc,
		Long:  embedderLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .embedder/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
