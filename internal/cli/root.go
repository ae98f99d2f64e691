// Package cli defines the cobra command tree for the cheeky CLI.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/config"
	"github.com/scbrown/cheeky/internal/ctxlog"
	"github.com/scbrown/cheeky/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath        string
	jsonOutput    bool
	catalogPath   string
	verbose       bool
	remoteURL     string
	recordHistory = true
	listenAddr    = config.DefaultListenAddr
	logLevel      = "info"
)

func defaultDBPath() string {
	return filepath.Join(config.Dir(), "history.db")
}

// ExitError ends the process with Code. An empty Message means the failure
// was already reported to the user.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// rootCmd is the top-level cheeky command.
var rootCmd = &cobra.Command{
	Use:   "cheeky",
	Short: "Explain what a git command line does",
	Long: `cheeky explains git invocations in plain English. It looks the
subcommand up in a catalog, matches every flag you passed (long names, short
aliases, grouped short flags, --flag=value) and renders each description with
your arguments filled in.

The built-in catalog covers git add, commit and push. Point catalog_path (or
--catalog) at a TOML or JSON file to use your own; cheeky catalog build
creates entries from saved git-scm.com pages or --help output.

Explanations are recorded in a SQLite database at ~/.cheeky/history.db
(configurable via --db or cheeky config db_path). Commands that print data
support --json.`,
	Example: `  # Explain an invocation
  cheeky explain git commit -am "Fix the build"

  # Explain every segment of a chain
  cheeky explain 'git add . && git push --all'

  # Find the command you meant
  cheeky suggest comit

  # Look back at what you asked about
  cheeky history --since 7d
  cheeky stats`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadFrom(configPath)
		if err == nil {
			applyConfig(cmd, cfg)
		}
		level := logLevel
		if verbose {
			level = "debug"
		}
		logger := ctxlog.New(cmd.ErrOrStderr(), level, "text")
		if err != nil {
			logger.Warn("ignoring unreadable config", "path", configPath, "err", err)
		}
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "path to SQLite history database")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file to use instead of the built-in git catalog")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log debug diagnostics to stderr")
}

// applyConfig copies config file settings into the globals unless the
// matching flag was given explicitly.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	if cfg.DBPath != "" && !cmd.Flags().Changed("db") {
		dbPath = cfg.DBPath
	}
	if cfg.CatalogPath != "" && !cmd.Flags().Changed("catalog") {
		catalogPath = cfg.CatalogPath
	}
	if cfg.DefaultFormat == "json" && !cmd.Flags().Changed("json") {
		jsonOutput = true
	}
	if cfg.LogLevel != "" {
		logLevel = cfg.LogLevel
	}
	recordHistory = cfg.HistoryEnabled()
	listenAddr = cfg.Addr()
	remoteURL = cfg.RemoteURL
}

// loadCatalog returns the catalog named by --catalog / catalog_path, or the
// built-in git catalog.
func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", catalogPath, err)
	}
	return cat, nil
}

// openStore returns the history store: a RemoteStore when remote_url is
// configured, otherwise the local SQLite database.
func openStore() (store.Store, error) {
	if remoteURL != "" {
		return store.NewRemote(remoteURL), nil
	}
	return store.New(dbPath)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
