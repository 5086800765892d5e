// Package configcmder provides the config command for managing persistent
// embedder configuration stored in the .embedder/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent embedder configuration.

Configuration is stored as config.toml in the .embedder/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen,
  embedding.provider, embedding.target, embedding.model

Use subcommands to get, set, or list configuration values:
  embedder config set <key> <value>    Set a configuration value
  embedder config get <key>            Get a configuration value
  embedder config list                 List all configuration values

Examples:
  embedder config set embedding.model nomic-embed-text
  embedder config get embedding.provider
  embedder config list`

const configShortDesc string = "Manage persistent embedder configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
