package render

// Style holds the visual constants of a scene
type Style struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	NodeFill       string  `yaml:"node_fill" json:"node_fill"`
	DefaultColor   string  `yaml:"default_color" json:"default_color"`
	GlyphRadius    float64 `yaml:"glyph_radius" json:"glyph_radius"`
	StatusOffset   float64 `yaml:"status_offset" json:"status_offset"`
	DimNodeOpacity float64 `yaml:"dim_node_opacity" json:"dim_node_opacity"`

	EdgeColor      string  `yaml:"edge_color" json:"edge_color"`
	EdgeDash       string  `yaml:"edge_dash" json:"edge_dash"`
	DimEdgeOpacity float64 `yaml:"dim_edge_opacity" json:"dim_edge_opacity"`
	ArrowLength    float64 `yaml:"arrow_length" json:"arrow_length"`
	LabelLift      float64 `yaml:"label_lift" json:"label_lift"`

	Engine string `yaml:"engine" json:"engine"`
}

// DefaultStyle returns the look of the system map for a viewport
func DefaultStyle(width, height float64) Style {
	return Style{
		Width:          width,
		Height:         height,
		NodeFill:       "#0a0a0a",
		DefaultColor:   "#888888",
		GlyphRadius:    24,
		StatusOffset:   18,
		DimNodeOpacity: 0.2,
		EdgeColor:      "#333",
		EdgeDash:       "5,5",
		DimEdgeOpacity: 0.1,
		ArrowLength:    8,
		LabelLift:      5,
		Engine:         "FORCE_SIM",
	}
}
