// Package scene provides the renderable container produced when reading
// geometry: a group of drawables with per-vertex attribute bindings.
package scene

import (
	"fmt"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// Primitive is the topology a drawable's vertex array is drawn with.
type Primitive int

const (
	Triangles Primitive = iota
	Points
)

// String returns a human-readable primitive name.
func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "Triangles"
	case Points:
		return "Points"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Binding says how an attribute array is applied to vertices.
type Binding int

const (
	BindOff Binding = iota
	BindPerVertex
)

// Drawable holds one vertex array drawn as a single primitive range.
type Drawable struct {
	Primitive Primitive
	Vertices  [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32 // texture unit 0
	Colors    [][4]float32

	NormalBinding Binding
	ColorBinding  Binding
}

// NewDrawable wraps the arrays of f. Normals and colors get a per-vertex
// binding when present.
func NewDrawable(prim Primitive, f *geometry.Flat) *Drawable {
	d := &Drawable{
		Primitive: prim,
		Vertices:  f.Positions,
		Normals:   f.Normals,
		TexCoords: f.TexCoords,
		Colors:    f.Colors,
	}
	if len(d.Normals) > 0 {
		d.NormalBinding = BindPerVertex
	}
	if len(d.Colors) > 0 {
		d.ColorBinding = BindPerVertex
	}
	return d
}

// Count returns the number of vertices drawn.
func (d *Drawable) Count() int {
	return len(d.Vertices)
}

// Flat returns the drawable's arrays as a flat vertex buffer.
func (d *Drawable) Flat() *geometry.Flat {
	f := &geometry.Flat{Positions: d.Vertices}
	if d.NormalBinding == BindPerVertex {
		f.Normals = d.Normals
	}
	if d.ColorBinding == BindPerVertex {
		f.Colors = d.Colors
	}
	f.TexCoords = d.TexCoords
	return f
}

// Group owns a list of drawables.
type Group struct {
	Name     string
	Children []*Drawable
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name}
}

// AddChild appends d.
func (g *Group) AddChild(d *Drawable) {
	g.Children = append(g.Children, d)
}

// NumChildren returns the number of drawables.
func (g *Group) NumChildren() int {
	return len(g.Children)
}

// Collect concatenates every triangle drawable into one flat triangle soup.
// A semantic missing from some drawable is dropped from the result so that
// all sequences stay the same length.
func (g *Group) Collect() *geometry.Flat {
	return g.collect(Triangles)
}

// CollectPoints concatenates every point drawable.
func (g *Group) CollectPoints() *geometry.Flat {
	return g.collect(Points)
}

func (g *Group) collect(prim Primitive) *geometry.Flat {
	var parts []*geometry.Flat
	for _, d := range g.Children {
		if d.Primitive == prim && d.Count() > 0 {
			parts = append(parts, d.Flat())
		}
	}

	out := &geometry.Flat{}
	if len(parts) == 0 {
		return out
	}

	all := func(s geometry.Semantic) bool {
		for _, p := range parts {
			if p.Len(s) != p.Len(geometry.Position) {
				return false
			}
		}
		return true
	}
	keepNormals := all(geometry.Normal)
	keepUVs := all(geometry.TexCoord)
	keepColors := all(geometry.Color)

	for _, p := range parts {
		out.Positions = append(out.Positions, p.Positions...)
		if keepNormals {
			out.Normals = append(out.Normals, p.Normals...)
		}
		if keepUVs {
			out.TexCoords = append(out.TexCoords, p.TexCoords...)
		}
		if keepColors {
			out.Colors = append(out.Colors, p.Colors...)
		}
	}
	return out
}
