package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, x.Cross(y))
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	assert.InDelta(t, 1, v.Normalize().Length(), 1e-3)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector should normalize to zero")
}

func TestFaceNormal(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c [3]float32
		want    Vec3
	}{
		{"ccw xy", [3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}, Vec3{0, 0, 1}},
		{"cw xy", [3]float32{0, 0, 0}, [3]float32{0, 1, 0}, [3]float32{1, 0, 0}, Vec3{0, 0, -1}},
		{"scaled", [3]float32{0, 0, 0}, [3]float32{0, 5, 0}, [3]float32{0, 0, 5}, Vec3{1, 0, 0}},
		{"degenerate", [3]float32{1, 1, 1}, [3]float32{1, 1, 1}, [3]float32{2, 2, 2}, Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FaceNormal(tt.a, tt.b, tt.c))
		})
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([][3]float32{{1, -2, 3}, {-1, 4, 0}, {0, 0, 8}})
	require.False(t, b.Empty)
	assert.Equal(t, Vec3{-1, -2, 0}, b.Min)
	assert.Equal(t, Vec3{1, 4, 8}, b.Max)
	assert.Equal(t, Vec3{2, 6, 8}, b.Size())
	assert.Equal(t, float32(8), b.MaxExtent())
	assert.Equal(t, Vec3{0, 1, 4}, b.Center())

	empty := BoundsOf(nil)
	assert.True(t, empty.Empty)
	assert.Equal(t, float32(0), empty.MaxExtent())

	empty.Extend(Vec3{2, 2, 2})
	assert.False(t, empty.Empty)
	assert.Equal(t, Vec3{2, 2, 2}, empty.Min)
}
