package drc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// maxBodyLen bounds the uncompressed body a header may announce.
const maxBodyLen = 1 << 30

// AttributeInfo summarises one decoded attribute.
type AttributeInfo struct {
	Semantic         geometry.Semantic
	NumValues        int
	QuantizationBits int
	IdentityMap      bool
}

// Info summarises an encoded buffer.
type Info struct {
	Header     Header
	NumPoints  int
	NumFaces   int
	Attributes []AttributeInfo
}

// bodyReader walks an uncompressed body.
type bodyReader struct {
	data []byte
	off  int
}

func (r *bodyReader) remaining() int {
	return len(r.data) - r.off
}

func (r *bodyReader) readByte() (uint8, error) {
	if r.off >= len(r.data) {
		return 0, ErrTruncated
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *bodyReader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n == 0 {
		return 0, ErrTruncated
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: varint overflow", ErrCorrupt)
	}
	r.off += n
	return v, nil
}

// count reads a uvarint length and checks that at least minBytes per element
// remain, so a corrupt length cannot force a huge allocation.
func (r *bodyReader) count(minBytes int) (int, error) {
	v, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(r.remaining()/minBytes) {
		return 0, fmt.Errorf("%w: count %d exceeds remaining data", ErrTruncated, v)
	}
	return int(v), nil
}

func (r *bodyReader) readFloat32() (float32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v, nil
}

// readBody decompresses the payload that follows the header.
func readBody(data []byte) (Header, []byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return h, nil, err
	}
	if h.BodyLen > maxBodyLen {
		return h, nil, fmt.Errorf("%w: body length %d", ErrCorrupt, h.BodyLen)
	}
	payload := data[headerSize:]
	if h.Method == MethodLZ4 && uint64(h.BodyLen) > uint64(len(payload))*maxLZ4Ratio {
		return h, nil, fmt.Errorf("%w: %d payload bytes cannot hold a %d byte body", ErrCorrupt, len(payload), h.BodyLen)
	}
	body, err := decompressBody(payload, h.Method, h.BodyLen)
	if err != nil {
		return h, nil, err
	}
	return h, body, nil
}

// Decode parses an encoded buffer into a geometry of the kind its header names.
func Decode(data []byte) (*geometry.Geometry, error) {
	g, _, err := decode(data)
	return g, err
}

// DecodeMesh decodes a buffer that must hold a triangular mesh.
func DecodeMesh(data []byte) (*geometry.Mesh, error) {
	kind, err := EncodedGeometryKind(data)
	if err != nil {
		return nil, err
	}
	if kind != geometry.KindMesh {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, geometry.KindMesh, kind)
	}
	g, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	m, _ := g.Mesh()
	return m, nil
}

// DecodePointCloud decodes the attribute store of either kind, dropping
// connectivity.
func DecodePointCloud(data []byte) (*geometry.PointCloud, error) {
	g, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	return g.PointCloud(), nil
}

// DecodeInfo decodes data once, returning the geometry with its summary.
func DecodeInfo(data []byte) (*geometry.Geometry, *Info, error) {
	g, info, err := decode(data)
	if err != nil {
		return nil, nil, err
	}
	info.NumPoints = g.PointCloud().NumPoints
	info.NumFaces = g.NumFaces()
	return g, info, nil
}

func decode(data []byte) (*geometry.Geometry, *Info, error) {
	h, body, err := readBody(data)
	if err != nil {
		return nil, nil, err
	}
	info := &Info{Header: h}
	r := &bodyReader{data: body}

	numPoints, err := r.readUvarint()
	if err != nil {
		return nil, nil, err
	}
	if numPoints > math.MaxInt32 {
		return nil, nil, fmt.Errorf("%w: point count %d", ErrCorrupt, numPoints)
	}
	pc := geometry.PointCloud{NumPoints: int(numPoints)}

	numAttrs, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}
	if numAttrs > geometry.NumSemantics {
		return nil, nil, fmt.Errorf("%w: %d attributes", ErrCorrupt, numAttrs)
	}
	for i := 0; i < int(numAttrs); i++ {
		a, ai, err := readAttribute(r)
		if err != nil {
			return nil, nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		if pc.Has(a.Semantic) {
			return nil, nil, fmt.Errorf("%w: duplicate %s attribute", ErrCorrupt, a.Semantic)
		}
		pc.SetAttribute(a.Semantic, a)
		info.Attributes = append(info.Attributes, ai)
	}

	if h.Kind == geometry.KindPointCloud {
		if r.remaining() != 0 {
			return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.remaining())
		}
		return geometry.NewPointCloudGeometry(&pc), info, nil
	}

	numFaces, err := r.count(3)
	if err != nil {
		return nil, nil, err
	}
	faces := make([]geometry.Face, numFaces)
	var prev int64
	for i := range faces {
		for j := 0; j < 3; j++ {
			u, err := r.readUvarint()
			if err != nil {
				return nil, nil, err
			}
			c := prev + unzigzag(u)
			if c < 0 || c >= int64(pc.NumPoints) {
				return nil, nil, fmt.Errorf("%w: face %d corner %d of %d points", ErrCorrupt, i, c, pc.NumPoints)
			}
			faces[i][j] = uint32(c)
			prev = c
		}
	}
	if r.remaining() != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.remaining())
	}
	return geometry.NewMeshGeometry(&geometry.Mesh{PointCloud: pc, Faces: faces}), info, nil
}

func readAttribute(r *bodyReader) (*geometry.Attribute, AttributeInfo, error) {
	var ai AttributeInfo

	sem, err := r.readByte()
	if err != nil {
		return nil, ai, err
	}
	comps, err := r.readByte()
	if err != nil {
		return nil, ai, err
	}
	bits, err := r.readByte()
	if err != nil {
		return nil, ai, err
	}
	s := geometry.Semantic(sem)
	if !s.Valid() || int(comps) != s.Components() {
		return nil, ai, fmt.Errorf("%w: semantic %d with %d components", ErrCorrupt, sem, comps)
	}
	if bits > MaxQuantizationBits {
		return nil, ai, fmt.Errorf("%w: %d quantization bits", ErrCorrupt, bits)
	}

	minBytes := 4 * int(comps)
	if bits > 0 {
		minBytes = int(comps)
	}
	n, err := r.count(minBytes)
	if err != nil {
		return nil, ai, err
	}

	a := geometry.NewAttribute(s, n)
	if bits == 0 {
		for i := range a.Values {
			if a.Values[i], err = r.readFloat32(); err != nil {
				return nil, ai, err
			}
		}
	} else {
		q := &quantizer{bits: int(bits), origin: make([]float32, comps)}
		for c := range q.origin {
			if q.origin[c], err = r.readFloat32(); err != nil {
				return nil, ai, err
			}
		}
		if q.rng, err = r.readFloat32(); err != nil {
			return nil, ai, err
		}
		maxQ := int64(q.maxQuantized())
		prev := make([]int64, comps)
		for i := 0; i < n; i++ {
			v := a.Value(i)
			for c := range v {
				u, err := r.readUvarint()
				if err != nil {
					return nil, ai, err
				}
				x := prev[c] + unzigzag(u)
				if x < 0 || x > maxQ {
					return nil, ai, fmt.Errorf("%w: quantized value %d out of range", ErrCorrupt, x)
				}
				v[c] = q.dequantize(uint32(x), c)
				prev[c] = x
			}
		}
	}

	mode, err := r.readByte()
	if err != nil {
		return nil, ai, err
	}
	switch mode {
	case mapIdentity:
	case mapExplicit:
		m, err := r.count(1)
		if err != nil {
			return nil, ai, err
		}
		a.PointMap = make([]uint32, m)
		var prev int64
		for p := range a.PointMap {
			u, err := r.readUvarint()
			if err != nil {
				return nil, ai, err
			}
			idx := prev + unzigzag(u)
			if idx < 0 || idx >= int64(n) {
				return nil, ai, fmt.Errorf("%w: point %d maps to value %d of %d", ErrCorrupt, p, idx, n)
			}
			a.PointMap[p] = uint32(idx)
			prev = idx
		}
	default:
		return nil, ai, fmt.Errorf("%w: point map mode %d", ErrCorrupt, mode)
	}

	ai = AttributeInfo{
		Semantic:         s,
		NumValues:        n,
		QuantizationBits: int(bits),
		IdentityMap:      a.IsIdentity(),
	}
	return a, ai, nil
}
