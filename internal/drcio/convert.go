package drcio

import (
	"fmt"
	"time"

	"github.com/Faultbox/drcgeom/pkg/drc"
	"github.com/Faultbox/drcgeom/pkg/geometry"
	"github.com/Faultbox/drcgeom/pkg/scene"
)

// Encoded is the result of converting one flat buffer.
type Encoded struct {
	Data       []byte
	Kind       geometry.Kind
	NumPoints  int
	NumFaces   int
	Report     SettingsReport
	Dedup      geometry.DedupStats
	EncodeTime time.Duration
}

// EncodeFlat builds geometry of the selected kind from f, deduplicates it and
// encodes it. A mesh build needs a vertex count divisible by three.
func EncodeFlat(f *geometry.Flat, opts Options) (*Encoded, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}

	var g *geometry.Geometry
	if opts.PointCloud {
		g = geometry.NewPointCloudGeometry(geometry.BuildPointCloud(f))
	} else {
		m, err := geometry.BuildMesh(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
		}
		g = geometry.NewMeshGeometry(m)
	}

	stats, err := geometry.Deduplicate(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}

	eo, report := Plan(opts, g.PointCloud())

	start := time.Now()
	data, err := drc.Encode(g, eo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	elapsed := time.Since(start)

	kind, err := drc.EncodedGeometryKind(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}

	return &Encoded{
		Data:       data,
		Kind:       kind,
		NumPoints:  g.PointCloud().NumPoints,
		NumFaces:   g.NumFaces(),
		Report:     report,
		Dedup:      stats,
		EncodeTime: elapsed,
	}, nil
}

// Decoded is the result of expanding one encoded buffer.
type Decoded struct {
	Kind       geometry.Kind
	Flat       *geometry.Flat
	NumPoints  int
	NumFaces   int
	DecodeTime time.Duration
}

// DecodeBuffer decodes data and expands it into flat arrays. Meshes become a
// triangle soup, point clouds become per-point arrays.
func DecodeBuffer(data []byte) (*Decoded, error) {
	kind, err := drc.EncodedGeometryKind(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	start := time.Now()
	var g *geometry.Geometry
	switch kind {
	case geometry.KindMesh:
		m, err := drc.DecodeMesh(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		g = geometry.NewMeshGeometry(m)
	default:
		pc, err := drc.DecodePointCloud(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		g = geometry.NewPointCloudGeometry(pc)
	}
	elapsed := time.Since(start)

	flat, err := geometry.Reconstruct(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	return &Decoded{
		Kind:       kind,
		Flat:       flat,
		NumPoints:  g.PointCloud().NumPoints,
		NumFaces:   g.NumFaces(),
		DecodeTime: elapsed,
	}, nil
}

// NewGroup wraps decoded arrays in a group. The group has no drawable when
// positions are absent.
func NewGroup(name string, d *Decoded) *scene.Group {
	group := scene.NewGroup(name)
	if len(d.Flat.Positions) == 0 {
		return group
	}
	prim := scene.Triangles
	if d.Kind == geometry.KindPointCloud {
		prim = scene.Points
	}
	group.AddChild(scene.NewDrawable(prim, d.Flat))
	return group
}
