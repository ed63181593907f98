package view

import (
	"fmt"
	"math"

	"github.com/kbukum/flowview/graph"
)

const (
	boxWidth    = 160.0
	boxHeight   = 56.0
	circleSize  = 64.0
	diamondSize = 72.0
	scenePad    = 40.0
)

const (
	defaultFill   = "#ffffff"
	selectedColor = "#2563eb"
)

// shape is one node as drawn in the SVG.
type shape struct {
	ID       string
	Label    string
	Kind     graph.Kind
	Status   graph.Status
	Shape    string
	X, Y     float64
	W, H     float64
	CX, CY   float64
	R        float64
	Points   string
	Fill     string
	Border   string
	Selected bool
	Action   bool
}

type line struct {
	X1, Y1, X2, Y2 float64
	LX, LY         float64
	Label          string
}

// scene is the geometry of the SVG canvas.
type scene struct {
	ViewBox   string
	Transform string
	Shapes    []shape
	Lines     []line
}

func size(shape string) (float64, float64) {
	switch shape {
	case graph.ShapeCircle:
		return circleSize, circleSize
	case graph.ShapeDiamond:
		return diamondSize, diamondSize
	default:
		return boxWidth, boxHeight
	}
}

// layout places nodes at their saved positions. With FitView the view box
// is fitted to the node bounds; otherwise the saved viewport is applied.
func layout(m Model) scene {
	sc := scene{Shapes: make([]shape, 0, len(m.Nodes))}
	centers := make(map[string][2]float64, len(m.Nodes))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, n := range m.Nodes {
		w, h := size(n.Kind.Shape)
		x, y := n.Position.X, n.Position.Y
		s := shape{
			ID:       n.ID,
			Label:    n.Data.Label,
			Kind:     n.Kind,
			Status:   n.Status,
			Shape:    n.Kind.Shape,
			X:        x,
			Y:        y,
			W:        w,
			H:        h,
			CX:       x + w/2,
			CY:       y + h/2,
			R:        h / 2,
			Fill:     defaultFill,
			Border:   n.Kind.Color,
			Selected: n.Selected,
			Action:   n.Actionable,
		}
		if s.Label == "" {
			s.Label = n.ID
		}
		if n.Style.Fill != "" {
			s.Fill = n.Style.Fill
		}
		if n.Style.Border != "" {
			s.Border = n.Style.Border
		}
		if n.Selected {
			s.Border = selectedColor
		}
		if s.Shape == graph.ShapeDiamond {
			s.Points = fmt.Sprintf("%g,%g %g,%g %g,%g %g,%g",
				s.CX, y, x+w, s.CY, s.CX, y+h, x, s.CY)
		}
		sc.Shapes = append(sc.Shapes, s)
		centers[n.ID] = [2]float64{s.CX, s.CY}

		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x+w), math.Max(maxY, y+h)
	}

	for _, e := range m.Edges {
		from, ok1 := centers[e.Source]
		to, ok2 := centers[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		sc.Lines = append(sc.Lines, line{
			X1: from[0], Y1: from[1], X2: to[0], Y2: to[1],
			LX: (from[0] + to[0]) / 2, LY: (from[1] + to[1]) / 2,
			Label: e.Label,
		})
	}

	if len(m.Nodes) == 0 {
		sc.ViewBox = "0 0 400 200"
		return sc
	}
	if m.Flags.FitView || m.Viewport == nil {
		sc.ViewBox = fmt.Sprintf("%g %g %g %g",
			minX-scenePad, minY-scenePad, maxX-minX+2*scenePad, maxY-minY+2*scenePad)
		return sc
	}
	zoom := m.Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	sc.ViewBox = fmt.Sprintf("0 0 %g %g", (maxX+scenePad)*zoom+m.Viewport.X, (maxY+scenePad)*zoom+m.Viewport.Y)
	sc.Transform = fmt.Sprintf("translate(%g %g) scale(%g)", m.Viewport.X, m.Viewport.Y, zoom)
	return sc
}
