package geometry

import "fmt"

// PerPointArrays resolves every slot through its point map into a dense
// per-point sequence. Each sequence covers max(values, map length) points,
// since the map may address more points than there are distinct values.
// Slots without values are skipped.
func PerPointArrays(pc *PointCloud) (*Flat, error) {
	out := &Flat{}
	for _, a := range pc.Attributes() {
		if a.NumValues() == 0 {
			continue
		}
		n := a.DenseLen()
		var present [NumSemantics]bool
		present[a.Semantic] = true
		out.grow(present, n)

		for p := 0; p < n; p++ {
			v, ok := a.MappedValue(p)
			if !ok {
				return nil, fmt.Errorf("%w: %s point %d -> value %d of %d",
					ErrInvalidMapping, a.Semantic, p, a.MappedIndex(p), a.NumValues())
			}
			out.appendValue(a.Semantic, v)
		}
	}
	return out, nil
}

// FlattenFaces expands faces into a triangle soup: three entries per face,
// corners in order, for every semantic present in points.
func FlattenFaces(faces []Face, points *Flat) (*Flat, error) {
	var present [NumSemantics]bool
	for _, s := range Semantics {
		present[s] = points.Has(s)
	}

	out := &Flat{}
	out.grow(present, 3*len(faces))
	for i, f := range faces {
		for _, c := range f {
			for _, s := range Semantics {
				if !present[s] {
					continue
				}
				if int(c) >= points.Len(s) {
					return nil, fmt.Errorf("%w: face %d corner %d, %s has %d points",
						ErrInvalidFace, i, c, s, points.Len(s))
				}
				out.appendValue(s, points.components(s, int(c)))
			}
		}
	}
	return out, nil
}

// Reconstruct expands a decoded geometry into renderable arrays: a triangle
// soup for meshes, per-point arrays for point clouds.
func Reconstruct(g *Geometry) (*Flat, error) {
	dense, err := PerPointArrays(g.PointCloud())
	if err != nil {
		return nil, err
	}
	if m, ok := g.Mesh(); ok {
		return FlattenFaces(m.Faces, dense)
	}
	if err := dense.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentAttributes, err)
	}
	return dense, nil
}
