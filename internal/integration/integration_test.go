//go:build integration

// Package integration runs end-to-end tests against the compiled cheeky
// binary. They are excluded from normal `go test ./...` runs and need the
// build tag: go test -tags integration ./internal/integration/
//
// TestMain builds the binary once. Each test gets an isolated env with its
// own HOME, config and database so tests can run in parallel.
package integration

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var cheekyBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "cheeky-integration-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration: create temp dir: %v\n", err)
		os.Exit(1)
	}

	bin := filepath.Join(tmp, "cheeky")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/cheeky")
	cmd.Dir = modRoot()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "integration: build cheeky binary: %v\n", err)
		os.RemoveAll(tmp)
		os.Exit(1)
	}

	cheekyBin = bin
	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// modRoot walks up from the working directory to the directory holding go.mod.
func modRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("integration: getwd: %v", err))
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("integration: could not find go.mod in any parent directory")
		}
		dir = parent
	}
}

type env struct {
	t       *testing.T
	home    string
	cfgPath string
	dbPath  string
}

// newEnv sandboxes HOME so ~/.cheeky resolves inside a temp directory.
func newEnv(t *testing.T) *env {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, ".cheeky")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create .cheeky dir: %v", err)
	}
	e := &env{
		t:       t,
		home:    home,
		cfgPath: filepath.Join(dir, "config.toml"),
		dbPath:  filepath.Join(dir, "history.db"),
	}
	e.writeConfig("")
	return e
}

func (e *env) run(stdin string, args ...string) (stdout, stderr string, exitCode int) {
	e.t.Helper()
	cmd := exec.Command(cheekyBin, args...)
	cmd.Env = append(os.Environ(), "HOME="+e.home, "NO_COLOR=1")
	cmd.Stdin = bytes.NewBufferString(stdin)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		exitCode = exitErr.ExitCode()
	default:
		e.t.Fatalf("run cheeky %v: %v", args, err)
	}
	return outBuf.String(), errBuf.String(), exitCode
}

func (e *env) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	stdout, stderr, code := e.run(stdin, args...)
	if code != 0 {
		e.t.Fatalf("cheeky %v exited %d\nstdout: %s\nstderr: %s", args, code, stdout, stderr)
	}
	return stdout
}

// writeConfig replaces config.toml, always keeping db_path sandboxed.
func (e *env) writeConfig(extra string) {
	e.t.Helper()
	cfg := fmt.Sprintf("db_path = %q\n%s", e.dbPath, extra)
	if err := os.WriteFile(e.cfgPath, []byte(cfg), 0o644); err != nil {
		e.t.Fatalf("write config: %v", err)
	}
}
