package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// OBJ format errors.
var (
	ErrInvalidOBJ      = errors.New("invalid OBJ data")
	ErrOBJIndexOutside = errors.New("OBJ index out of range")
)

type objCorner struct {
	pos, tex, norm int // resolved 0-based, -1 when absent
}

// ParseOBJ reads Wavefront OBJ text into a triangle soup. Polygons are
// fan-triangulated. Vertex colors follow positions on "v" lines. A semantic is
// kept only when every face corner carries it.
func ParseOBJ(data []byte) (*geometry.Flat, error) {
	var (
		positions [][3]float32
		colors    [][4]float32
		normals   [][3]float32
		texcoords [][2]float32
		tris      [][3]objCorner
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		ident, val := fields[0], fields[1:]

		switch ident {
		case "v":
			vals, err := parseFloats(val, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, lineNo, err)
			}
			positions = append(positions, [3]float32{vals[0], vals[1], vals[2]})
			if len(vals) >= 6 {
				colors = append(colors, [4]float32{vals[3], vals[4], vals[5], 1})
			} else {
				colors = append(colors, [4]float32{-1, -1, -1, -1})
			}
		case "vn":
			vals, err := parseFloats(val, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, lineNo, err)
			}
			normals = append(normals, [3]float32{vals[0], vals[1], vals[2]})
		case "vt":
			vals, err := parseFloats(val, 2)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, lineNo, err)
			}
			texcoords = append(texcoords, [2]float32{vals[0], vals[1]})
		case "f":
			if len(val) < 3 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 corners", ErrInvalidOBJ, lineNo)
			}
			corners := make([]objCorner, len(val))
			for i, s := range val {
				c, err := parseCorner(s, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners[i] = c
			}
			for i := 1; i+1 < len(corners); i++ {
				tris = append(tris, [3]objCorner{corners[0], corners[i], corners[i+1]})
			}
		default:
			// Groups, materials and smoothing do not affect vertex data.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOBJ, err)
	}

	hasTex, hasNorm, hasColor := len(tris) > 0, len(tris) > 0, len(tris) > 0
	for _, t := range tris {
		for _, c := range t {
			hasTex = hasTex && c.tex >= 0
			hasNorm = hasNorm && c.norm >= 0
			hasColor = hasColor && colors[c.pos][3] >= 0
		}
	}

	f := &geometry.Flat{Positions: make([][3]float32, 0, 3*len(tris))}
	for _, t := range tris {
		for _, c := range t {
			f.Positions = append(f.Positions, positions[c.pos])
			if hasTex {
				f.TexCoords = append(f.TexCoords, texcoords[c.tex])
			}
			if hasNorm {
				f.Normals = append(f.Normals, normals[c.norm])
			}
			if hasColor {
				f.Colors = append(f.Colors, colors[c.pos])
			}
		}
	}
	return f, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*geometry.Flat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

func parseFloats(fields []string, minCount int) ([]float32, error) {
	if len(fields) < minCount {
		return nil, fmt.Errorf("expected %d values, got %d", minCount, len(fields))
	}
	out := make([]float32, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseCorner parses "p", "p/t", "p//n" or "p/t/n". Indices are 1-based;
// negative indices count back from the latest element.
func parseCorner(s string, numPos, numTex, numNorm int) (objCorner, error) {
	parts := strings.Split(s, "/")
	c := objCorner{pos: -1, tex: -1, norm: -1}

	var err error
	if c.pos, err = resolveIndex(parts[0], numPos); err != nil {
		return c, err
	}
	if c.pos < 0 {
		return c, fmt.Errorf("%w: corner %q has no position", ErrInvalidOBJ, s)
	}
	if len(parts) > 1 {
		if c.tex, err = resolveIndex(parts[1], numTex); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 {
		if c.norm, err = resolveIndex(parts[2], numNorm); err != nil {
			return c, err
		}
	}
	return c, nil
}

func resolveIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("%w: bad index %q", ErrInvalidOBJ, s)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return -1, fmt.Errorf("%w: %d of %d", ErrOBJIndexOutside, i, n)
	}
}

// WriteOBJ writes f as an OBJ triangle soup. Colors are written after
// positions without alpha.
func WriteOBJ(w io.Writer, f *geometry.Flat) error {
	if err := f.Validate(); err != nil {
		return err
	}
	n := f.VertexCount()
	if n%3 != 0 {
		return fmt.Errorf("%w: %d vertices", geometry.ErrNotTriangulated, n)
	}

	bw := bufio.NewWriter(w)
	hasColor := f.Has(geometry.Color)
	for i, p := range f.Positions {
		if hasColor {
			c := f.Colors[i]
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p[0], p[1], p[2], c[0], c[1], c[2])
		} else {
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
	}
	for _, t := range f.TexCoords {
		fmt.Fprintf(bw, "vt %g %g\n", t[0], t[1])
	}
	for _, nv := range f.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", nv[0], nv[1], nv[2])
	}

	hasTex, hasNorm := f.Has(geometry.TexCoord), f.Has(geometry.Normal)
	for i := 0; i < n; i += 3 {
		bw.WriteString("f")
		for k := 1; k <= 3; k++ {
			idx := i + k
			switch {
			case hasTex && hasNorm:
				fmt.Fprintf(bw, " %d/%d/%d", idx, idx, idx)
			case hasTex:
				fmt.Fprintf(bw, " %d/%d", idx, idx)
			case hasNorm:
				fmt.Fprintf(bw, " %d//%d", idx, idx)
			default:
				fmt.Fprintf(bw, " %d", idx)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteOBJPoints writes f as OBJ point elements, one per vertex.
func WriteOBJPoints(w io.Writer, f *geometry.Flat) error {
	if err := f.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	hasColor := f.Has(geometry.Color)
	for i, p := range f.Positions {
		if hasColor {
			c := f.Colors[i]
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p[0], p[1], p[2], c[0], c[1], c[2])
		} else {
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
	}
	for _, nv := range f.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", nv[0], nv[1], nv[2])
	}
	for i := range f.Positions {
		fmt.Fprintf(bw, "p %d\n", i+1)
	}
	return bw.Flush()
}
