package render

import (
	"strings"

	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/r2"
)

// Compose builds the scene for one frame. It only reads its inputs.
func Compose(s *domain.Snapshot, st domain.InteractionState, style Style) Scene {
	scene := Scene{
		Tick:   s.Tick,
		Alpha:  s.Alpha,
		Width:  style.Width,
		Height: style.Height,
		Nodes:  make([]NodeGlyph, 0, s.Len()),
		Edges:  make([]EdgeGlyph, 0, len(s.Edges)),
		Overlay: Overlay{
			Modules: s.Len(),
			Engine:  style.Engine,
			State:   "SETTLING",
		},
	}
	if s.Settled {
		scene.Overlay.State = "STABLE"
	}

	accent := make(map[string]string, s.Len())
	for i, n := range s.Nodes {
		color := n.Color
		if color == "" {
			color = style.DefaultColor
		}
		accent[n.ID] = color

		opacity := 1.0
		if !st.Emphasized(n.ID) {
			opacity = style.DimNodeOpacity
		}
		if n.Status == domain.StatusOnline {
			scene.Overlay.Online++
		}

		scene.Nodes = append(scene.Nodes, NodeGlyph{
			ID:          n.ID,
			Label:       n.Label,
			Shape:       ShapeFor(n.Category),
			At:          pt(s.Position(i)),
			Stroke:      color,
			Fill:        style.NodeFill,
			Opacity:     opacity,
			StatusColor: StatusColor(n.Status),
			StatusAt:    Point{X: style.StatusOffset, Y: -style.StatusOffset},
			Pinned:      s.Bodies[i].Pinned(),
		})

		if n.ID == st.Hovered {
			scene.Tooltip = &Tooltip{
				ID:          n.ID,
				Label:       n.Label,
				Description: n.Description,
				Status:      strings.ToUpper(string(n.Status)),
				StatusColor: StatusColor(n.Status),
				Color:       color,
			}
		}
	}

	for k, e := range s.Edges {
		l := s.Links[k]
		from, to := s.Position(l.Source), s.Position(l.Target)

		g := EdgeGlyph{
			ID:           e.ID(),
			Source:       e.Source,
			Target:       e.Target,
			From:         pt(from),
			To:           pt(to),
			Arrow:        arrow(from, to, style),
			Stroke:       style.EdgeColor,
			Dash:         style.EdgeDash,
			Opacity:      1,
			Label:        "[" + e.Relation + "]",
			LabelAt:      Point{X: (from.X + to.X) / 2, Y: (from.Y+to.Y)/2 - style.LabelLift},
			LabelVisible: true,
		}
		switch {
		case st.Connected(e):
			g.Stroke = accent[st.Hovered]
			g.Dash = ""
		case st.Highlighting():
			g.Opacity = style.DimEdgeOpacity
			g.LabelVisible = false
		}
		scene.Edges = append(scene.Edges, g)
	}

	return scene
}

// arrow returns the triangle pointing at the target, stopped short of its glyph
func arrow(from, to r2.Vec, style Style) []Point {
	d := r2.Sub(to, from)
	l := r2.Norm(d)
	if l < 1e-9 {
		return nil
	}
	dir := r2.Scale(1/l, d)
	perp := r2.Vec{X: -dir.Y, Y: dir.X}

	tip := r2.Sub(to, r2.Scale(style.GlyphRadius, dir))
	base := r2.Sub(tip, r2.Scale(style.ArrowLength, dir))
	half := style.ArrowLength / 2
	return []Point{
		pt(tip),
		pt(r2.Add(base, r2.Scale(half, perp))),
		pt(r2.Sub(base, r2.Scale(half, perp))),
	}
}
