package geometry

import "fmt"

// BuildPointCloud copies each non-empty flat sequence into its own slot with
// an identity point mapping. One point is created per flat entry.
func BuildPointCloud(f *Flat) *PointCloud {
	pc := &PointCloud{NumPoints: f.VertexCount()}
	for _, s := range Semantics {
		n := f.Len(s)
		if n == 0 {
			continue
		}
		attr := NewAttribute(s, n)
		for i := 0; i < n; i++ {
			attr.SetValue(i, f.components(s, i))
		}
		pc.SetAttribute(s, attr)
	}
	return pc
}

// IdentityFaces returns numPoints/3 faces where face i references points
// 3i, 3i+1 and 3i+2.
func IdentityFaces(numPoints int) ([]Face, error) {
	if numPoints%3 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotTriangulated, numPoints)
	}
	faces := make([]Face, numPoints/3)
	for i := range faces {
		base := uint32(3 * i)
		faces[i] = Face{base, base + 1, base + 2}
	}
	return faces, nil
}

// BuildMesh builds the attribute store for a triangle soup and indexes it
// naively, one point per corner. Shared vertices are found later by
// deduplication.
func BuildMesh(f *Flat) (*Mesh, error) {
	pc := BuildPointCloud(f)
	faces, err := IdentityFaces(pc.NumPoints)
	if err != nil {
		return nil, err
	}
	return &Mesh{PointCloud: *pc, Faces: faces}, nil
}
