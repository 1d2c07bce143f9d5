package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedEdgeQuad returns two triangles sharing the edge b-c.
func sharedEdgeQuad() *Flat {
	a := [3]float32{0, 0, 0}
	b := [3]float32{1, 0, 0}
	c := [3]float32{0, 1, 0}
	d := [3]float32{1, 1, 0}
	return &Flat{Positions: [][3]float32{a, b, c, c, b, d}}
}

func TestFlat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		flat    Flat
		wantErr bool
	}{
		{"empty", Flat{}, false},
		{"positions only", Flat{Positions: make([][3]float32, 3)}, false},
		{"matching", Flat{Positions: make([][3]float32, 3), Colors: make([][4]float32, 3)}, false},
		{"normals short", Flat{Positions: make([][3]float32, 6), Normals: make([][3]float32, 3)}, true},
		{"uv without positions", Flat{TexCoords: make([][2]float32, 3)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flat.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMismatchedLengths)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSemantic_Components(t *testing.T) {
	want := map[Semantic]int{Position: 3, Normal: 3, TexCoord: 2, Color: 4, Semantic(9): 0}
	for s, n := range want {
		assert.Equal(t, n, s.Components(), "%s.Components()", s)
	}
}

func TestBuildPointCloud(t *testing.T) {
	flat := &Flat{
		Positions: [][3]float32{{1, 2, 3}, {4, 5, 6}},
		TexCoords: [][2]float32{{0.5, 0.25}, {1, 0}},
	}
	pc := BuildPointCloud(flat)

	require.Equal(t, 2, pc.NumPoints)
	assert.False(t, pc.Has(Normal), "absent normals must not get a slot")
	assert.False(t, pc.Has(Color), "absent colors must not get a slot")

	pos := pc.Attribute(Position)
	require.NotNil(t, pos)
	assert.True(t, pos.IsIdentity())
	assert.Equal(t, []float32{4, 5, 6}, pos.Value(1))

	uv := pc.Attribute(TexCoord)
	assert.Equal(t, 2, uv.NumValues())
	assert.Equal(t, float32(0.25), uv.Value(0)[1])
	assert.Len(t, pc.Attributes(), 2)
}

func TestIdentityFaces(t *testing.T) {
	faces, err := IdentityFaces(9)
	require.NoError(t, err)
	require.Len(t, faces, 3)
	for i, f := range faces {
		assert.Equal(t, Face{uint32(3 * i), uint32(3*i + 1), uint32(3*i + 2)}, f, "face %d", i)
	}

	_, err = IdentityFaces(7)
	assert.ErrorIs(t, err, ErrNotTriangulated)
}

func TestDeduplicate_SharedEdge(t *testing.T) {
	flat := sharedEdgeQuad()
	mesh, err := BuildMesh(flat)
	require.NoError(t, err)
	g := NewMeshGeometry(mesh)

	stats, err := Deduplicate(g)
	require.NoError(t, err)
	assert.Equal(t, DedupStats{PointsBefore: 6, PointsAfter: 4}, stats)
	assert.Equal(t, 4, mesh.Attribute(Position).NumValues())
	assert.Equal(t, []Face{{0, 1, 2}, {2, 1, 3}}, mesh.Faces)

	out, err := Reconstruct(g)
	require.NoError(t, err)
	assert.Equal(t, flat.Positions, out.Positions)
}

func TestDeduplicate_DistinctColorsKeepPoints(t *testing.T) {
	flat := &Flat{}
	for i := 0; i < 5; i++ {
		flat.Positions = append(flat.Positions, [3]float32{1, 1, 1})
		flat.Colors = append(flat.Colors, [4]float32{float32(i) / 4, 0, 0, 1})
	}
	g := NewPointCloudGeometry(BuildPointCloud(flat))

	stats, err := Deduplicate(g)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.PointsAfter)

	pc := g.PointCloud()
	assert.Equal(t, 1, pc.Attribute(Position).NumValues(), "positions collapse to one value")
	assert.Equal(t, 5, pc.Attribute(Color).NumValues())
}

func TestDeduplicate_IdenticalPointsMerge(t *testing.T) {
	flat := &Flat{
		Positions: [][3]float32{{1, 2, 3}, {1, 2, 3}, {4, 5, 6}, {1, 2, 3}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 1, 0}},
	}
	g := NewPointCloudGeometry(BuildPointCloud(flat))
	stats, err := Deduplicate(g)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PointsAfter)

	out, err := Reconstruct(g)
	require.NoError(t, err)
	require.Len(t, out.Positions, 3)
	require.Len(t, out.Normals, 3)
	assert.Equal(t, [3]float32{0, 1, 0}, out.Normals[2])
}

func TestDeduplicate_Monotonic(t *testing.T) {
	flats := []*Flat{
		sharedEdgeQuad(),
		{Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
		{Positions: [][3]float32{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
	}
	for i, flat := range flats {
		mesh, err := BuildMesh(flat)
		require.NoError(t, err, "flat %d", i)
		stats, err := Deduplicate(NewMeshGeometry(mesh))
		require.NoError(t, err, "flat %d", i)

		assert.LessOrEqual(t, stats.PointsAfter, stats.PointsBefore, "flat %d", i)
		for _, f := range mesh.Faces {
			for _, c := range f {
				assert.Less(t, int(c), mesh.NumPoints, "flat %d corner", i)
			}
		}
	}
}

func TestDeduplicate_DropsUnreferencedValues(t *testing.T) {
	attr := NewAttribute(Position, 3)
	attr.SetValue(0, []float32{1, 1, 1})
	attr.SetValue(1, []float32{2, 2, 2})
	attr.SetValue(2, []float32{3, 3, 3})
	attr.PointMap = []uint32{2, 0}

	pc := &PointCloud{NumPoints: 2}
	pc.SetAttribute(Position, attr)
	require.NoError(t, pc.DeduplicateAttributeValues())

	require.Equal(t, 2, attr.NumValues())
	assert.Equal(t, float32(3), attr.Value(0)[0], "first-reference order")
	assert.Equal(t, float32(1), attr.Value(1)[0], "first-reference order")
}

func TestPerPointArrays_MapBounds(t *testing.T) {
	t.Run("map longer than values", func(t *testing.T) {
		attr := NewAttribute(TexCoord, 2)
		attr.SetValue(0, []float32{0, 0})
		attr.SetValue(1, []float32{1, 1})
		attr.PointMap = []uint32{0, 1, 1, 0, 1}

		pc := &PointCloud{NumPoints: 5}
		pc.SetAttribute(TexCoord, attr)
		out, err := PerPointArrays(pc)
		require.NoError(t, err)
		require.Len(t, out.TexCoords, 5)
		assert.Equal(t, [2]float32{0, 0}, out.TexCoords[3])
		assert.Equal(t, [2]float32{1, 1}, out.TexCoords[4])
	})

	t.Run("values longer than map", func(t *testing.T) {
		attr := NewAttribute(Position, 4)
		for i := 0; i < 4; i++ {
			attr.SetValue(i, []float32{float32(i), 0, 0})
		}
		attr.PointMap = []uint32{1, 0}

		pc := &PointCloud{NumPoints: 4}
		pc.SetAttribute(Position, attr)
		out, err := PerPointArrays(pc)
		require.NoError(t, err)

		want := []float32{1, 0, 2, 3}
		require.Len(t, out.Positions, len(want))
		for i, x := range want {
			assert.Equal(t, x, out.Positions[i][0], "point %d", i)
		}
	})

	t.Run("map outside values", func(t *testing.T) {
		attr := NewAttribute(Normal, 1)
		attr.PointMap = []uint32{0, 3}
		pc := &PointCloud{NumPoints: 2}
		pc.SetAttribute(Normal, attr)
		_, err := PerPointArrays(pc)
		assert.ErrorIs(t, err, ErrInvalidMapping)
	})
}

func TestReconstruct_PointCloudInconsistent(t *testing.T) {
	pc := &PointCloud{NumPoints: 3}
	pc.SetAttribute(Position, NewAttribute(Position, 3))
	pc.SetAttribute(Color, NewAttribute(Color, 2))

	_, err := Reconstruct(NewPointCloudGeometry(pc))
	assert.ErrorIs(t, err, ErrInconsistentAttributes)
}

func TestFlattenFaces_InvalidCorner(t *testing.T) {
	points := &Flat{Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	_, err := FlattenFaces([]Face{{0, 1, 5}}, points)
	assert.ErrorIs(t, err, ErrInvalidFace)
}

func TestGeometry_TaggedUnion(t *testing.T) {
	mesh := &Mesh{PointCloud: PointCloud{NumPoints: 3}, Faces: []Face{{0, 1, 2}}}
	g := NewMeshGeometry(mesh)
	assert.Equal(t, KindMesh, g.Kind())
	m, ok := g.Mesh()
	assert.True(t, ok)
	assert.Same(t, mesh, m)
	assert.Same(t, &mesh.PointCloud, g.PointCloud())
	assert.Equal(t, 1, g.NumFaces())

	pc := &PointCloud{NumPoints: 2}
	g = NewPointCloudGeometry(pc)
	_, ok = g.Mesh()
	assert.False(t, ok, "point cloud must not expose a mesh")
	assert.Same(t, pc, g.PointCloud())
	assert.Equal(t, 0, g.NumFaces())
}
