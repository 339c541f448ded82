package domain

import (
	"crypto/sha256"
	"fmt"
)

// Edge is a directed, labelled relation between two nodes.
// The arrow points at Target; the layout treats it as an undirected spring.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation string   `json:"relation"`
	Strength *float64 `json:"strength,omitempty"`
}

// NewEdge creates a new edge
func NewEdge(source, target, relation string) *Edge {
	return &Edge{
		Source:   source,
		Target:   target,
		Relation: relation,
	}
}

// WithStrength returns a copy of the edge with a link strength override
func (e Edge) WithStrength(s float64) Edge {
	e.Strength = &s
	return e
}

// Touches reports whether id is either endpoint of the edge
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite to id
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// ID creates a deterministic key for the edge.
// Direction matters: A->B and B->A are distinct relations.
func (e Edge) ID() string {
	key := fmt.Sprintf("%s>%s>%s", e.Source, e.Target, e.Relation)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// Link is an edge resolved against the node index of a Graph
type Link struct {
	Source   int
	Target   int
	Strength *float64
}
