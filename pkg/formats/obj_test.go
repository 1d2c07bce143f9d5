package formats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl none
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJ_FanTriangulation(t *testing.T) {
	f, err := ParseOBJ([]byte(quadOBJ))
	require.NoError(t, err)
	require.Equal(t, 6, f.VertexCount())

	want := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	assert.Equal(t, want, f.Positions)
	require.Len(t, f.TexCoords, 6)
	assert.Equal(t, [2]float32{0, 1}, f.TexCoords[5])
	assert.Len(t, f.Normals, 6)
	assert.False(t, f.Has(geometry.Color), "expected no colors")
}

func TestParseOBJ_Variants(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantVerts int
		wantTex   bool
		wantNorm  bool
		wantColor bool
	}{
		{"positions only", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n", 3, false, false, false},
		{"normals no tex", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n", 3, false, true, false},
		{"negative indices", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n", 3, false, false, false},
		{"vertex colors", "v 0 0 0 1 0 0\nv 1 0 0 0 1 0\nv 0 1 0 0 0 1\nf 1 2 3\n", 3, false, false, true},
		{"partial tex dropped", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2 3\n", 3, false, false, false},
		{"empty", "# nothing\n", 0, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseOBJ([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerts, f.VertexCount())
			assert.Equal(t, tt.wantTex, f.Has(geometry.TexCoord), "texcoords present")
			assert.Equal(t, tt.wantNorm, f.Has(geometry.Normal), "normals present")
			assert.Equal(t, tt.wantColor, f.Has(geometry.Color), "colors present")
			assert.NoError(t, f.Validate())
		})
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"bad float", "v 0 x 0\n", ErrInvalidOBJ},
		{"short vertex", "v 0 0\n", ErrInvalidOBJ},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrInvalidOBJ},
		{"index past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrOBJIndexOutside},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexOutside},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a 1 2\n", ErrInvalidOBJ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.src))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteOBJ_RoundTrip(t *testing.T) {
	in := &geometry.Flat{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		TexCoords: [][2]float32{{0, 0}, {1, 0}, {0, 1}},
		Colors:    [][4]float32{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, in))
	out, err := ParseOBJ(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, in.Positions, out.Positions)
	assert.Equal(t, in.Normals, out.Normals)
	assert.Equal(t, in.TexCoords, out.TexCoords)
	assert.Equal(t, in.Colors, out.Colors)
}

func TestWriteOBJ_NotTriangulated(t *testing.T) {
	in := &geometry.Flat{Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}}}
	assert.ErrorIs(t, WriteOBJ(&bytes.Buffer{}, in), geometry.ErrNotTriangulated)
}

func TestWriteOBJPoints(t *testing.T) {
	in := &geometry.Flat{
		Positions: [][3]float32{{1, 2, 3}, {4, 5, 6}},
		Colors:    [][4]float32{{1, 0, 0, 1}, {0, 1, 0, 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOBJPoints(&buf, in))
	assert.Equal(t, "v 1 2 3 1 0 0\nv 4 5 6 0 1 0\np 1\np 2\n", buf.String())
}
