package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a file extension no codec handles
var ErrUnknownFormat = errors.New("unknown catalog format")

// Importer parses a catalog from a stream
type Importer interface {
	Parse(r io.Reader) (*Catalog, error)
	Format() string
}

// Exporter writes a catalog to a stream
type Exporter interface {
	Export(c *Catalog, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// YAMLCodec handles YAML catalogs
type YAMLCodec struct{}

// Format returns the codec format identifier
func (YAMLCodec) Format() string { return "yaml" }

// Parse imports a catalog from YAML
func (YAMLCodec) Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &c, nil
}

// Export writes the catalog as YAML
func (YAMLCodec) Export(c *Catalog, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// JSONCodec handles JSON catalogs
type JSONCodec struct{}

// Format returns the codec format identifier
func (JSONCodec) Format() string { return "json" }

// Parse imports a catalog from JSON
func (JSONCodec) Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &c, nil
}

// Export writes the catalog as indented JSON
func (JSONCodec) Export(c *Catalog, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// TOMLCodec handles TOML catalogs written as [[nodes]] and [[edges]] tables
type TOMLCodec struct{}

// Format returns the codec format identifier
func (TOMLCodec) Format() string { return "toml" }

// Parse imports a catalog from TOML
func (TOMLCodec) Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse TOML: unknown key %q", undecoded[0].String())
	}
	return &c, nil
}

// Export writes the catalog as TOML
func (TOMLCodec) Export(c *Catalog, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}

// ForPath picks the codec by file extension
func ForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}, nil
	case ".json":
		return JSONCodec{}, nil
	case ".toml":
		return TOMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// FileSource reads a catalog file with the codec matching its extension
type FileSource struct {
	Path string
}

// Name returns the file path
func (s FileSource) Name() string { return s.Path }

// Load reads and parses the file
func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	codec, err := ForPath(s.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := codec.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return c, nil
}

// WriteFile exports c to path with the codec matching its extension
func WriteFile(path string, c *Catalog) error {
	codec, err := ForPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}
	if err := codec.Export(c, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
