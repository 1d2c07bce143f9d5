// Package geometry converts between flat triangle-soup vertex streams and
// compact indexed attribute stores.
package geometry

import (
	"errors"
	"fmt"
)

// Geometry errors.
var (
	ErrMismatchedLengths      = errors.New("flat attribute sequences differ in length")
	ErrNotTriangulated        = errors.New("vertex count is not a multiple of 3")
	ErrInvalidMapping         = errors.New("point maps outside attribute values")
	ErrInvalidFace            = errors.New("face corner outside point range")
	ErrInconsistentAttributes = errors.New("attributes resolve to different point counts")
)

// Semantic identifies what an attribute slot stores.
type Semantic uint8

const (
	Position Semantic = 0
	Normal   Semantic = 1
	TexCoord Semantic = 2
	Color    Semantic = 3
)

// NumSemantics is the number of known semantics.
const NumSemantics = 4

// Semantics lists every semantic in storage order.
var Semantics = [NumSemantics]Semantic{Position, Normal, TexCoord, Color}

// Components returns the number of float32 components per value.
func (s Semantic) Components() int {
	switch s {
	case Position, Normal:
		return 3
	case TexCoord:
		return 2
	case Color:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is a known semantic.
func (s Semantic) Valid() bool {
	return s < NumSemantics
}

// String returns a human-readable semantic name.
func (s Semantic) String() string {
	switch s {
	case Position:
		return "Position"
	case Normal:
		return "Normal"
	case TexCoord:
		return "TexCoord"
	case Color:
		return "Color"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Kind tags a geometry as a mesh or a point cloud.
type Kind uint8

const (
	KindPointCloud Kind = 0
	KindMesh       Kind = 1
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPointCloud:
		return "PointCloud"
	case KindMesh:
		return "Mesh"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Face is a triangle given as three point identities.
type Face [3]uint32

// Flat holds per-vertex attribute sequences laid out as a triangle soup
// (or one entry per point for point clouds). Empty sequences are absent.
type Flat struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Colors    [][4]float32
}

// Len returns the length of the sequence for semantic s.
func (f *Flat) Len(s Semantic) int {
	switch s {
	case Position:
		return len(f.Positions)
	case Normal:
		return len(f.Normals)
	case TexCoord:
		return len(f.TexCoords)
	case Color:
		return len(f.Colors)
	default:
		return 0
	}
}

// Has reports whether semantic s is present.
func (f *Flat) Has(s Semantic) bool {
	return f.Len(s) > 0
}

// VertexCount returns the shared length of the non-empty sequences.
func (f *Flat) VertexCount() int {
	for _, s := range Semantics {
		if n := f.Len(s); n > 0 {
			return n
		}
	}
	return 0
}

// Validate checks that all non-empty sequences share one length.
func (f *Flat) Validate() error {
	n := f.VertexCount()
	for _, s := range Semantics {
		if l := f.Len(s); l > 0 && l != n {
			return fmt.Errorf("%w: %s has %d entries, expected %d", ErrMismatchedLengths, s, l, n)
		}
	}
	return nil
}

// components returns entry i of semantic s as a float slice.
func (f *Flat) components(s Semantic, i int) []float32 {
	switch s {
	case Position:
		return f.Positions[i][:]
	case Normal:
		return f.Normals[i][:]
	case TexCoord:
		return f.TexCoords[i][:]
	case Color:
		return f.Colors[i][:]
	default:
		return nil
	}
}

// appendValue appends one value of semantic s copied from v.
func (f *Flat) appendValue(s Semantic, v []float32) {
	switch s {
	case Position:
		f.Positions = append(f.Positions, [3]float32{v[0], v[1], v[2]})
	case Normal:
		f.Normals = append(f.Normals, [3]float32{v[0], v[1], v[2]})
	case TexCoord:
		f.TexCoords = append(f.TexCoords, [2]float32{v[0], v[1]})
	case Color:
		f.Colors = append(f.Colors, [4]float32{v[0], v[1], v[2], v[3]})
	}
}

// grow reserves capacity for n entries in every semantic in present.
func (f *Flat) grow(present [NumSemantics]bool, n int) {
	if present[Position] {
		f.Positions = make([][3]float32, 0, n)
	}
	if present[Normal] {
		f.Normals = make([][3]float32, 0, n)
	}
	if present[TexCoord] {
		f.TexCoords = make([][2]float32, 0, n)
	}
	if present[Color] {
		f.Colors = make([][4]float32, 0, n)
	}
}
