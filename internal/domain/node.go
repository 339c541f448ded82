package domain

import "strings"

// Category is the closed set of subsystem kinds. It drives glyph shape.
type Category string

const (
	CategoryMemory    Category = "memory"
	CategoryCognition Category = "cognition"
	CategoryExecution Category = "execution"
	CategoryResearch  Category = "research"
	CategoryHardware  Category = "hardware"
	CategorySwarm     Category = "swarm"
)

// Categories lists every known category in declaration order
var Categories = []Category{
	CategoryMemory,
	CategoryCognition,
	CategoryExecution,
	CategoryResearch,
	CategoryHardware,
	CategorySwarm,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the operational state of a subsystem. It drives the indicator color.
type Status string

const (
	StatusOnline       Status = "online"
	StatusDegraded     Status = "degraded"
	StatusExperimental Status = "experimental"
)

// ParseStatus normalizes catalog spellings such as "ONLINE".
// Unknown values are kept so the renderer can fall back to its default color.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// ParseCategory normalizes a catalog category string
func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// Node is the immutable descriptor of one subsystem in the graph
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Color       string   `json:"color"`
	Description string   `json:"description,omitempty"`
}

// NewNode creates a new online node labelled with its id
func NewNode(id string, category Category, label string) *Node {
	if label == "" {
		label = id
	}
	return &Node{
		ID:       id,
		Label:    label,
		Category: category,
		Status:   StatusOnline,
	}
}
