package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/scbrown/cheeky/internal/model"
)

//go:embed git.toml
var builtin []byte

// File is the on-disk shape of a catalog.
type File struct {
	Prefix        string            `toml:"prefix" json:"prefix"`
	SpecialTokens map[string]string `toml:"special_tokens,omitempty" json:"special_tokens,omitempty"`
	Commands      []model.Command   `toml:"commands" json:"commands"`
}

// Format selects the catalog file encoding.
type Format string

const (
	TOML Format = "toml"
	JSON Format = "json"
)

// FormatFor picks the format from a file extension; anything other than
// ".json" is TOML.
func FormatFor(path string) Format {
	if filepath.Ext(path) == ".json" {
		return JSON
	}
	return TOML
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Decode(bytes.NewReader(builtin), TOML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
})

// Default returns the built-in git catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Load reads and validates a catalog file. A missing file is an error.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	defer f.Close()
	c, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrEmpty reads a catalog file, returning an empty catalog with the
// given prefix when the file does not exist yet.
func LoadOrEmpty(path, prefix string) (*Catalog, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(prefix, nil, nil)
	}
	return c, err
}

// Decode parses a catalog in the given format and validates it.
func Decode(r io.Reader, format Format) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var f File
	switch format {
	case JSON:
		err = json.Unmarshal(data, &f)
	default:
		err = toml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f.Prefix, f.Commands, f.SpecialTokens)
}

// ToFile returns the serializable form of c.
func (c *Catalog) ToFile() File {
	return File{
		Prefix:        c.prefix,
		SpecialTokens: c.SpecialTokens(),
		Commands:      c.Commands(),
	}
}

// Encode writes c in the given format.
func Encode(w io.Writer, c *Catalog, format Format) error {
	f := c.ToFile()
	if format == JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Save writes c to path, creating parent directories as needed. The format
// follows the file extension.
func Save(path string, c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, c, FormatFor(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
