package render

import "gonum.org/v1/gonum/spatial/r2"

// Point is a scene coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pt(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// NodeGlyph is one node ready to draw
type NodeGlyph struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Shape       Shape   `json:"shape"`
	At          Point   `json:"at"`
	Stroke      string  `json:"stroke"`
	Fill        string  `json:"fill"`
	Opacity     float64 `json:"opacity"`
	StatusColor string  `json:"status_color"`
	// StatusAt is relative to At
	StatusAt Point `json:"status_at"`
	Pinned   bool  `json:"pinned,omitempty"`
}

// EdgeGlyph is one edge ready to draw
type EdgeGlyph struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	From    Point   `json:"from"`
	To      Point   `json:"to"`
	Arrow   []Point `json:"arrow"`
	Stroke  string  `json:"stroke"`
	Dash    string  `json:"dash,omitempty"`
	Opacity float64 `json:"opacity"`

	Label        string `json:"label"`
	LabelAt      Point  `json:"label_at"`
	LabelVisible bool   `json:"label_visible"`
}

// Tooltip describes the hovered node
type Tooltip struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StatusColor string `json:"status_color"`
	Color       string `json:"color"`
}

// Overlay is the status panel of the map
type Overlay struct {
	Modules int     `json:"modules"`
	Online  int     `json:"online"`
	Engine  string  `json:"engine"`
	State   string  `json:"state"`
	FPS     float64 `json:"fps"`
}

// Scene is everything a surface needs to draw one frame
type Scene struct {
	Tick    uint64      `json:"tick"`
	Alpha   float64     `json:"alpha"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Edges   []EdgeGlyph `json:"edges"`
	Nodes   []NodeGlyph `json:"nodes"`
	Tooltip *Tooltip    `json:"tooltip,omitempty"`
	Overlay Overlay     `json:"overlay"`
}
