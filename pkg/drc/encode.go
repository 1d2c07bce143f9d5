package drc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// Point map modes in the body.
const (
	mapIdentity uint8 = 0
	mapExplicit uint8 = 1
)

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// Encode serialises g into a self-describing buffer. A mesh without faces is
// written as a point cloud.
func Encode(g *geometry.Geometry, opts *EncoderOptions) ([]byte, error) {
	if opts == nil {
		opts = NewEncoderOptions()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	kind := geometry.KindPointCloud
	var faces []geometry.Face
	if m, ok := g.Mesh(); ok && m.NumFaces() > 0 {
		kind = geometry.KindMesh
		faces = m.Faces
	}

	body, err := encodeBody(g.PointCloud(), faces, kind, opts)
	if err != nil {
		return nil, err
	}
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("body too large: %d bytes", len(body))
	}

	payload, method, err := compressBody(body, opts.method(), opts.EncodeSpeed())
	if err != nil {
		return nil, err
	}

	h := Header{
		Major:   VersionMajor,
		Minor:   VersionMinor,
		Kind:    kind,
		Method:  method,
		BodyLen: uint32(len(body)),
	}
	out := h.appendTo(make([]byte, 0, headerSize+len(payload)))
	return append(out, payload...), nil
}

func encodeBody(pc *geometry.PointCloud, faces []geometry.Face, kind geometry.Kind, opts *EncoderOptions) ([]byte, error) {
	attrs := pc.Attributes()

	var buf []byte
	buf = binary.AppendUvarint(buf, uint64(pc.NumPoints))
	buf = append(buf, uint8(len(attrs)))

	for _, a := range attrs {
		var err error
		buf, err = appendAttribute(buf, a, opts.AttributeQuantization(a.Semantic))
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", a.Semantic, err)
		}
	}

	if kind == geometry.KindMesh {
		buf = binary.AppendUvarint(buf, uint64(len(faces)))
		var prev int64
		for i, f := range faces {
			for _, c := range f {
				if int(c) >= pc.NumPoints {
					return nil, fmt.Errorf("%w: face %d corner %d of %d points", geometry.ErrInvalidFace, i, c, pc.NumPoints)
				}
				buf = binary.AppendUvarint(buf, zigzag(int64(c)-prev))
				prev = int64(c)
			}
		}
	}
	return buf, nil
}

func appendAttribute(buf []byte, a *geometry.Attribute, bits int) ([]byte, error) {
	comps := a.Components()
	n := a.NumValues()

	buf = append(buf, uint8(a.Semantic), uint8(comps), uint8(bits))
	buf = binary.AppendUvarint(buf, uint64(n))

	if bits == 0 {
		for _, v := range a.Values[:n*comps] {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	} else {
		q, err := newQuantizer(a.Values[:n*comps], comps, bits)
		if err != nil {
			return nil, err
		}
		for _, o := range q.origin {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(o))
		}
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(q.rng))

		prev := make([]int64, comps)
		for i := 0; i < n; i++ {
			for c, v := range a.Value(i) {
				u := int64(q.quantize(v, c))
				buf = binary.AppendUvarint(buf, zigzag(u-prev[c]))
				prev[c] = u
			}
		}
	}

	if isIdentityMap(a, n) {
		return append(buf, mapIdentity), nil
	}
	buf = append(buf, mapExplicit)
	buf = binary.AppendUvarint(buf, uint64(len(a.PointMap)))
	var prev int64
	for _, idx := range a.PointMap {
		buf = binary.AppendUvarint(buf, zigzag(int64(idx)-prev))
		prev = int64(idx)
	}
	return buf, nil
}

// isIdentityMap reports whether a's point map is equivalent to no map.
func isIdentityMap(a *geometry.Attribute, numValues int) bool {
	if a.IsIdentity() {
		return true
	}
	if len(a.PointMap) != numValues {
		return false
	}
	for i, idx := range a.PointMap {
		if int(idx) != i {
			return false
		}
	}
	return true
}
