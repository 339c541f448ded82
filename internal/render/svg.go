package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// svgWriter remembers the first write error so callers check once
type svgWriter struct {
	w   *bufio.Writer
	err error
}

func (s *svgWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func esc(v string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(v))
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// SVG writes a standalone SVG document for the scene
func SVG(w io.Writer, sc Scene) error {
	s := &svgWriter{w: bufio.NewWriter(w)}

	s.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" font-family="monospace">`+"\n",
		num(sc.Width), num(sc.Height), num(sc.Width), num(sc.Height))
	s.printf(`<rect width="100%%" height="100%%" fill="#050505"/>` + "\n")

	s.printf("<g class=\"links\">\n")
	for _, e := range sc.Edges {
		dash := ""
		if e.Dash != "" {
			dash = fmt.Sprintf(` stroke-dasharray="%s"`, esc(e.Dash))
		}
		s.printf(`<g opacity="%s"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1.5"%s/>`,
			num(e.Opacity), num(e.From.X), num(e.From.Y), num(e.To.X), num(e.To.Y), esc(e.Stroke), dash)
		if len(e.Arrow) == 3 {
			s.printf(`<polygon points="%s,%s %s,%s %s,%s" fill="%s"/>`,
				num(e.Arrow[0].X), num(e.Arrow[0].Y), num(e.Arrow[1].X), num(e.Arrow[1].Y),
				num(e.Arrow[2].X), num(e.Arrow[2].Y), esc(e.Stroke))
		}
		if e.LabelVisible {
			s.printf(`<text x="%s" y="%s" fill="#666" font-size="8" text-anchor="middle">%s</text>`,
				num(e.LabelAt.X), num(e.LabelAt.Y), esc(e.Label))
		}
		s.printf("</g>\n")
	}
	s.printf("</g>\n")

	s.printf("<g class=\"nodes\">\n")
	for _, n := range sc.Nodes {
		s.printf(`<g id="%s" transform="translate(%s,%s)" opacity="%s">`,
			esc(n.ID), num(n.At.X), num(n.At.Y), num(n.Opacity))
		s.printf(glyph(n.Shape), esc(n.Fill), esc(n.Stroke))
		s.printf(`<circle cx="%s" cy="%s" r="3" fill="%s"/>`, num(n.StatusAt.X), num(n.StatusAt.Y), esc(n.StatusColor))
		s.printf(`<text y="40" fill="%s" font-size="10" text-anchor="middle">%s</text>`, esc(n.Stroke), esc(n.Label))
		s.printf("</g>\n")
	}
	s.printf("</g>\n")

	o := sc.Overlay
	s.printf(`<text x="12" y="20" fill="#888" font-size="10">MODULES: %d/%d ONLINE  ENGINE: %s  STATE: %s  FPS: %d</text>`+"\n",
		o.Online, o.Modules, esc(o.Engine), esc(o.State), int(o.FPS+0.5))

	if t := sc.Tooltip; t != nil {
		s.printf(`<g class="tooltip" transform="translate(12,%s)">`, num(sc.Height-64))
		s.printf(`<text y="0" fill="%s" font-size="12">%s</text>`, esc(t.Color), esc(t.Label))
		s.printf(`<text y="16" fill="#aaa" font-size="10">%s</text>`, esc(t.Description))
		s.printf(`<text y="32" fill="%s" font-size="10">STATUS: %s</text>`, esc(t.StatusColor), esc(t.Status))
		s.printf("</g>\n")
	}

	s.printf("</svg>\n")
	if s.err != nil {
		return fmt.Errorf("write svg: %w", s.err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// glyph returns the element for a shape with fill and stroke verbs
func glyph(shape Shape) string {
	const paint = ` fill="%[1]s" stroke="%[2]s" stroke-width="2"`
	switch shape {
	case ShapeHexagon:
		return `<path d="M0,-24 L20,-12 L20,12 L0,24 L-20,12 L-20,-12 Z"` + paint + `/>`
	case ShapeDiamond:
		return `<rect x="-15" y="-15" width="30" height="30" transform="rotate(45)"` + paint + `/>`
	case ShapeRect:
		return `<rect x="-25" y="-15" width="50" height="30"` + paint + `/>`
	case ShapeTrapezoid:
		return `<path d="M-15,-15 L15,-15 L25,15 L-25,15 Z"` + paint + `/>`
	case ShapeCluster:
		return `<circle cx="-8" cy="-5" r="8"` + paint + `/>` +
			`<circle cx="8" cy="-5" r="8"` + paint + `/>` +
			`<circle cx="0" cy="8" r="8"` + paint + `/>`
	case ShapeCircle:
		return `<circle r="20"` + paint + `/>`
	default:
		return `<circle r="20"` + paint + `/>`
	}
}
