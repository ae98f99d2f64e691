package cli

import (
	"fmt"
	"io"

	"github.com/scbrown/cheeky/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or modify configuration",
	Long: `View or change cheeky configuration stored in ~/.cheeky/config.toml.

With no arguments, shows all configuration settings.
With one argument, shows the value of that key.
With two arguments, sets the key to the given value; an empty value
clears it.

Settings:
  catalog_path    Catalog file to use instead of the built-in git catalog
  db_path         Path to the SQLite history database
  default_format  Default output format: "text" or "json"
  listen_addr     Address for cheeky serve (default :7274)
  log_level       Diagnostic log level: debug, info, warn or error
  record_history  Record explained invocations: true or false
  remote_url      Base URL of a cheeky server to record history to`,
	Example: `  cheeky config
  cheeky config db_path
  cheeky config catalog_path ~/.cheeky/catalog.toml
  cheeky config record_history false
  cheeky config remote_url http://build-box:7274
  cheeky config default_format json`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		w := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			return showConfig(w, cfg)
		case 1:
			return getConfig(w, cfg, args[0])
		default:
			return setConfig(w, cfg, args[0], args[1])
		}
	},
}

// configPath is the path to the config file, settable for testing.
var configPath = config.Path()

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(w io.Writer, cfg *config.Config) error {
	if jsonOutput {
		return writeJSON(w, cfg)
	}

	tbl := NewTable(w, "KEY", "VALUE")
	for _, key := range config.ValidKeys() {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		tbl.Row(key, val)
	}
	return tbl.Flush()
}

func getConfig(w io.Writer, cfg *config.Config, key string) error {
	val, err := cfg.Get(key)
	if err != nil {
		return err
	}
	if val == "" {
		return nil
	}
	fmt.Fprintln(w, val)
	return nil
}

func setConfig(w io.Writer, cfg *config.Config, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return err
	}
	val, _ := cfg.Get(key)
	fmt.Fprintf(w, "%s = %s\n", key, val)
	return nil
}
