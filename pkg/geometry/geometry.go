package geometry

// PointCloud is an attribute store over a set of point identities.
type PointCloud struct {
	NumPoints  int
	attributes [NumSemantics]*Attribute
}

// Attribute returns the slot for s, or nil if absent.
func (pc *PointCloud) Attribute(s Semantic) *Attribute {
	if !s.Valid() {
		return nil
	}
	return pc.attributes[s]
}

// SetAttribute installs a (or removes the slot when a is nil).
func (pc *PointCloud) SetAttribute(s Semantic, a *Attribute) {
	if !s.Valid() {
		return
	}
	pc.attributes[s] = a
}

// Has reports whether a slot exists for s.
func (pc *PointCloud) Has(s Semantic) bool {
	return pc.Attribute(s) != nil
}

// Attributes returns the present slots in semantic order.
func (pc *PointCloud) Attributes() []*Attribute {
	var out []*Attribute
	for _, a := range pc.attributes {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Mesh is a point cloud plus triangle connectivity.
type Mesh struct {
	PointCloud
	Faces []Face
}

// NumFaces returns the number of triangles.
func (m *Mesh) NumFaces() int {
	return len(m.Faces)
}

// Geometry owns either a mesh or a point cloud.
type Geometry struct {
	kind  Kind
	mesh  *Mesh
	cloud *PointCloud
}

// NewMeshGeometry wraps m.
func NewMeshGeometry(m *Mesh) *Geometry {
	return &Geometry{kind: KindMesh, mesh: m}
}

// NewPointCloudGeometry wraps pc.
func NewPointCloudGeometry(pc *PointCloud) *Geometry {
	return &Geometry{kind: KindPointCloud, cloud: pc}
}

// Kind returns the geometry tag.
func (g *Geometry) Kind() Kind {
	return g.kind
}

// Mesh returns the mesh payload when the geometry is a mesh.
func (g *Geometry) Mesh() (*Mesh, bool) {
	if g.kind != KindMesh {
		return nil, false
	}
	return g.mesh, true
}

// PointCloud returns the attribute store. For meshes this is the mesh's
// embedded store.
func (g *Geometry) PointCloud() *PointCloud {
	if g.kind == KindMesh {
		return &g.mesh.PointCloud
	}
	return g.cloud
}

// NumFaces returns the face count, zero for point clouds.
func (g *Geometry) NumFaces() int {
	if m, ok := g.Mesh(); ok {
		return m.NumFaces()
	}
	return 0
}
