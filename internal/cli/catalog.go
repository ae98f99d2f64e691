package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/scbrown/cheeky/internal/analyze"
	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/docscrape"
	"github.com/scbrown/cheeky/internal/model"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect, validate and build command catalogs",
	Long: `A catalog lists the subcommands cheeky can explain, each with a
description template and its flags. The built-in catalog covers git add,
commit and push; --catalog or catalog_path selects a TOML or JSON file
instead.

Descriptions may contain one %s marker. In a command description it is
replaced with the positional arguments; in a string flag's description with
the flag's value; in a boolean flag's description with the positionals.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(w, cat.Commands())
		}
		tbl := NewTable(w, "COMMAND", "FLAGS", "DESCRIPTION")
		for _, c := range cat.Commands() {
			tbl.Row(cat.Prefix()+" "+c.Name, strconv.Itoa(len(c.Flags)), truncate(c.Description, 60))
		}
		return tbl.Flush()
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <command>",
	Short: "Show one catalog command and its flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		c, ok := cat.Find(args[0])
		if !ok {
			msg := fmt.Sprintf("unknown command %q", args[0])
			if name, ok := analyze.Closest(args[0], cat.Names()); ok {
				msg += fmt.Sprintf(" (did you mean %q?)", name)
			}
			return errors.New(msg)
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(w, c)
		}
		r := newRenderer(w)
		fmt.Fprintln(w, r.title.Sprint(cat.Prefix()+" "+c.Name))
		r.paragraph(c.Description, 2)
		if len(c.Flags) == 0 {
			return nil
		}
		fmt.Fprintln(w)
		tbl := NewTable(w, "FLAG", "KIND", "DESCRIPTION")
		for _, f := range c.Flags {
			kind := "bool"
			if f.IsString {
				kind = "string"
			}
			tbl.Row(strings.Join(displaySpellings(f.Name, f.Aliases), ", "), kind, truncate(f.Description, 60))
		}
		return tbl.Flush()
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog file against the catalog rules",
	Long: `Validate loads a catalog file and reports every problem found:
missing names or descriptions, more than one %s marker, duplicate commands,
and flag names or aliases used twice within one command.`,
	Example: `  cheeky catalog validate ./tools.toml`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return &ExitError{Code: 1}
		}
		flags := 0
		for _, c := range cat.Commands() {
			flags += len(c.Flags)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d %s, %d %s (prefix %q)\n",
			cat.Len(), plural(cat.Len(), "command", "commands"),
			flags, plural(flags, "flag", "flags"), cat.Prefix())
		return nil
	},
}

var (
	buildCommand     string
	buildDescription string
	buildHTML        string
	buildText        string
	buildInto        string
	buildPrefix      string
	buildFormat      string
)

var catalogBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a catalog entry from saved documentation",
	Long: `Build reads documentation saved on disk and turns its option list into
a catalog command.

--html takes a git-scm.com manual page saved from the browser: the OPTIONS
definition list supplies the flags, and the NAME line the description when
--description is not given. --text takes the output of "git <cmd> -h".

For every option the longest spelling becomes the flag name and the others
its aliases; options documented with a <value> placeholder become string
flags. Entries that cannot become a valid flag are reported on stderr and
left out.

Without --into the entry is printed as a one-command catalog. With --into it
is merged into that file (created if missing), replacing any command of the
same name.`,
	Example: `  cheeky catalog build --command commit --html git-commit.html
  git status -h | cheeky catalog build --command status --text - \
      --description "Shows the working tree status of %s."
  cheeky catalog build --command log --description "Shows the commit logs." \
      --text log-help.txt --into ~/.cheeky/catalog.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if buildCommand == "" {
			return errors.New("--command is required")
		}
		if buildFormat != string(catalog.TOML) && buildFormat != string(catalog.JSON) {
			return fmt.Errorf("unsupported --format %q (use toml or json)", buildFormat)
		}
		if (buildHTML == "") == (buildText == "") {
			return errors.New("exactly one of --html or --text is required")
		}

		var res *docscrape.Result
		var err error
		if buildHTML != "" {
			err = withInput(cmd, buildHTML, func(r io.Reader) (perr error) {
				res, perr = docscrape.ParseHTML(r, buildCommand, buildDescription)
				return perr
			})
		} else {
			if buildDescription == "" {
				return errors.New("--description is required with --text")
			}
			err = withInput(cmd, buildText, func(r io.Reader) (perr error) {
				res, perr = docscrape.ParseText(r, buildCommand, buildDescription)
				return perr
			})
		}
		if err != nil {
			return fmt.Errorf("build %s: %w", buildCommand, err)
		}
		if res.Command.Description == "" {
			return errors.New("no description found; pass --description")
		}
		for _, sk := range res.Skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", sk.Spelling, sk.Reason)
		}

		if buildInto != "" {
			base, err := catalog.LoadOrEmpty(buildInto, buildPrefix)
			if err != nil {
				return err
			}
			merged, err := catalog.Merge(base, res.Command)
			if err != nil {
				return err
			}
			if err := catalog.Save(buildInto, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s %s (%d flags) to %s\n",
				merged.Prefix(), res.Command.Name, len(res.Command.Flags), buildInto)
			return nil
		}

		single, err := catalog.New(buildPrefix, []model.Command{res.Command}, nil)
		if err != nil {
			return err
		}
		format := catalog.Format(buildFormat)
		if jsonOutput {
			format = catalog.JSON
		}
		return catalog.Encode(cmd.OutOrStdout(), single, format)
	},
}

func init() {
	catalogBuildCmd.Flags().StringVar(&buildCommand, "command", "", "subcommand name (e.g., commit)")
	catalogBuildCmd.Flags().StringVar(&buildDescription, "description", "", "command description template (may contain one %s)")
	catalogBuildCmd.Flags().StringVar(&buildHTML, "html", "", "saved git-scm.com manual page (- for stdin)")
	catalogBuildCmd.Flags().StringVar(&buildText, "text", "", "saved -h / --help output (- for stdin)")
	catalogBuildCmd.Flags().StringVar(&buildInto, "into", "", "catalog file to merge the command into")
	catalogBuildCmd.Flags().StringVar(&buildPrefix, "prefix", "git", "tool prefix for a new catalog")
	catalogBuildCmd.Flags().StringVar(&buildFormat, "format", "toml", "output format without --into: toml or json")

	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogValidateCmd, catalogBuildCmd)
	rootCmd.AddCommand(catalogCmd)
}

// withInput calls fn with the named file, or stdin for "-".
func withInput(cmd *cobra.Command, path string, fn func(io.Reader) error) error {
	if path == "-" {
		return fn(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
