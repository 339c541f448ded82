// Package catalog holds the external description of the system map: which
// subsystems exist and how they relate. A catalog is read from a file, a
// SQLite database or the embedded default and built into a domain.Graph
// once per session.
package catalog

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"coremap/internal/domain"

	"golang.org/x/crypto/blake2b"
	"gonum.org/v1/gonum/spatial/r2"
)

// NodeSpec describes one subsystem
type NodeSpec struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Category    string `json:"category" yaml:"category" toml:"category"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// EdgeSpec describes one directed relation
type EdgeSpec struct {
	Source   string   `json:"source" yaml:"source" toml:"source"`
	Target   string   `json:"target" yaml:"target" toml:"target"`
	Relation string   `json:"relation" yaml:"relation" toml:"relation"`
	Strength *float64 `json:"strength,omitempty" yaml:"strength,omitempty" toml:"strength,omitempty"`
}

// Catalog is the complete node and edge list of a system map
type Catalog struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes" toml:"nodes"`
	Edges []EdgeSpec `json:"edges" yaml:"edges" toml:"edges"`
}

// Source loads a catalog from somewhere
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
	// Name identifies the source in logs
	Name() string
}

// Descriptors converts the specs into domain descriptors.
// Status defaults to online and label to the id.
func (c *Catalog) Descriptors() ([]domain.Node, []domain.Edge) {
	nodes := make([]domain.Node, 0, len(c.Nodes))
	for _, ns := range c.Nodes {
		n := domain.NewNode(strings.TrimSpace(ns.ID), domain.ParseCategory(ns.Category), ns.Label)
		if ns.Status != "" {
			n.Status = domain.ParseStatus(ns.Status)
		}
		n.Color = ns.Color
		n.Description = ns.Description
		nodes = append(nodes, *n)
	}

	edges := make([]domain.Edge, 0, len(c.Edges))
	for _, es := range c.Edges {
		e := domain.NewEdge(strings.TrimSpace(es.Source), strings.TrimSpace(es.Target), es.Relation)
		if es.Strength != nil {
			*e = e.WithStrength(*es.Strength)
		}
		edges = append(edges, *e)
	}
	return nodes, edges
}

// Build constructs a fresh graph with bodies placed around center
func (c *Catalog) Build(center r2.Vec) (*domain.Graph, error) {
	nodes, edges := c.Descriptors()
	g, err := domain.New(nodes, edges, center)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}

// Validate reports the first construction error of the catalog
func (c *Catalog) Validate() error {
	_, err := c.Build(r2.Vec{})
	return err
}

// Fingerprint returns the BLAKE2b-256 digest of the catalog content in hex
func (c *Catalog) Fingerprint() string {
	// encoding a struct of strings and pointers to floats cannot fail
	data, _ := json.Marshal(c)
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Unknown lists node ids whose category is not one of the known kinds.
// Such nodes still build and render with the fallback glyph.
func (c *Catalog) Unknown() []string {
	var ids []string
	for _, ns := range c.Nodes {
		if !domain.ParseCategory(ns.Category).Valid() {
			ids = append(ids, strings.TrimSpace(ns.ID))
		}
	}
	return ids
}
