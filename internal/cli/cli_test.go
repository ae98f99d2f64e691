package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scbrown/cheeky/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliEnv is an isolated config file and history database for running the
// command tree in-process.
type cliEnv struct {
	t       *testing.T
	dir     string
	cfgPath string
	dbPath  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		t:       t,
		dir:     dir,
		cfgPath: filepath.Join(dir, "config.toml"),
		dbPath:  filepath.Join(dir, "history.db"),
	}
}

// run executes `cheeky <args>` with stdin and returns what was written to
// stdout and stderr. Flags and globals are reset first since cobra keeps
// parsed values between Execute calls.
func (e *cliEnv) run(stdin string, args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	resetCommands(rootCmd)
	recordHistory = true
	listenAddr = config.DefaultListenAddr
	logLevel = "info"
	remoteURL = ""
	configPath = e.cfgPath
	dbPath = e.dbPath
	e.t.Cleanup(func() { configPath = config.Path() })

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// mustRun is like run but fails the test on error.
func (e *cliEnv) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(stdin, args...)
	if err != nil {
		e.t.Fatalf("cheeky %v: %v\nstdout: %s\nstderr: %s", args, err, out, errOut)
	}
	return out
}

func (e *cliEnv) writeConfig(content string) {
	e.t.Helper()
	if err := os.WriteFile(e.cfgPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("write config: %v", err)
	}
}

func (e *cliEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func resetCommands(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetCommands(c)
	}
}

// execute runs the command tree in a fresh environment.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return newCLIEnv(t).run(stdin, args...)
}
