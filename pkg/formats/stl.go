package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/drcgeom/pkg/geometry"
	"github.com/Faultbox/drcgeom/pkg/vecmath"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTL       = errors.New("invalid STL data")
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal, 3 vertices, attribute byte count
)

// ParseSTL parses binary or ASCII STL into a triangle soup. Facet normals are
// repeated on each corner; a file whose facets all have zero normals yields
// no normals.
func ParseSTL(data []byte) (*geometry.Flat, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return parseASCIISTL(data)
	}
	return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedSTLData, len(data))
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*geometry.Flat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

// isBinarySTL checks the size implied by the triangle count. ASCII files may
// also begin with "solid", so the prefix alone decides nothing.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize
}

func parseBinarySTL(data []byte) (*geometry.Flat, error) {
	r := bytes.NewReader(data[stlHeaderSize:])

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading triangle count", ErrTruncatedSTLData)
	}

	f := &geometry.Flat{
		Positions: make([][3]float32, 0, 3*count),
		Normals:   make([][3]float32, 0, 3*count),
	}
	anyNormal := false
	for i := uint32(0); i < count; i++ {
		var tri struct {
			Normal   [3]float32
			Vertices [3][3]float32
			Attr     uint16
		}
		if err := binary.Read(r, binary.LittleEndian, &tri); err != nil {
			return nil, fmt.Errorf("%w: reading triangle %d", ErrTruncatedSTLData, i)
		}
		anyNormal = anyNormal || tri.Normal != [3]float32{}
		for _, v := range tri.Vertices {
			f.Positions = append(f.Positions, v)
			f.Normals = append(f.Normals, tri.Normal)
		}
	}
	if !anyNormal {
		f.Normals = nil
	}
	return f, nil
}

func parseASCIISTL(data []byte) (*geometry.Flat, error) {
	f := &geometry.Flat{}
	anyNormal := false
	var normal [3]float32

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: malformed facet", ErrInvalidSTL, lineNo)
			}
			v, err := parseVec3(fields[2:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, lineNo, err)
			}
			normal = v
			anyNormal = anyNormal || normal != [3]float32{}
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: malformed vertex", ErrInvalidSTL, lineNo)
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, lineNo, err)
			}
			f.Positions = append(f.Positions, v)
			f.Normals = append(f.Normals, normal)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSTL, err)
	}
	if len(f.Positions)%3 != 0 {
		return nil, fmt.Errorf("%w: %d vertices is not a whole number of facets", ErrInvalidSTL, len(f.Positions))
	}
	if !anyNormal {
		f.Normals = nil
	}
	return f, nil
}

func parseVec3(fields []string) ([3]float32, error) {
	var v [3]float32
	for i := range v {
		x, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(x)
	}
	return v, nil
}

// WriteSTL writes the triangles of f as binary STL. Facet normals are
// computed from the winding; texture coordinates and colors are not stored.
func WriteSTL(w io.Writer, f *geometry.Flat) error {
	n := len(f.Positions)
	if n%3 != 0 {
		return fmt.Errorf("%w: %d vertices", geometry.ErrNotTriangulated, n)
	}
	if uint64(n/3) > math.MaxUint32 {
		return fmt.Errorf("%w: too many triangles", ErrInvalidSTL)
	}

	bw := bufio.NewWriter(w)
	var header [stlHeaderSize]byte
	copy(header[:], "binary STL written by drcgeom")
	bw.Write(header[:])
	if err := binary.Write(bw, binary.LittleEndian, uint32(n/3)); err != nil {
		return err
	}

	for i := 0; i < n; i += 3 {
		a, b, c := f.Positions[i], f.Positions[i+1], f.Positions[i+2]
		tri := struct {
			Normal   [3]float32
			Vertices [3][3]float32
			Attr     uint16
		}{
			Normal:   vecmath.FaceNormal(a, b, c).Array(),
			Vertices: [3][3]float32{a, b, c},
		}
		if err := binary.Write(bw, binary.LittleEndian, &tri); err != nil {
			return err
		}
	}
	return bw.Flush()
}
