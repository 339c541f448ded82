package catalog

import (
	"bytes"
	"context"
	_ "embed"
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the built-in system map
func Default() *Catalog {
	c, err := YAMLCodec{}.Parse(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic("catalog: embedded default is invalid: " + err.Error())
	}
	return c
}

// DefaultSource serves the built-in system map
type DefaultSource struct{}

// Name identifies the embedded catalog
func (DefaultSource) Name() string { return "builtin" }

// Load returns the built-in system map
func (DefaultSource) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Default(), nil
}
