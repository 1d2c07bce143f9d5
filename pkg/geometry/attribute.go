package geometry

// Attribute is one semantic slot: a sequence of values plus a mapping from
// point identity to value index.
type Attribute struct {
	Semantic Semantic
	Values   []float32 // NumValues()*Components() floats
	PointMap []uint32  // nil means identity
}

// NewAttribute allocates a slot for n values of semantic s.
func NewAttribute(s Semantic, n int) *Attribute {
	return &Attribute{
		Semantic: s,
		Values:   make([]float32, n*s.Components()),
	}
}

// Components returns the number of floats per value.
func (a *Attribute) Components() int {
	return a.Semantic.Components()
}

// NumValues returns the number of stored values.
func (a *Attribute) NumValues() int {
	c := a.Components()
	if c == 0 {
		return 0
	}
	return len(a.Values) / c
}

// IsIdentity reports whether points map directly onto value indices.
func (a *Attribute) IsIdentity() bool {
	return a.PointMap == nil
}

// Value returns value i. The slice aliases the attribute's storage.
func (a *Attribute) Value(i int) []float32 {
	c := a.Components()
	return a.Values[i*c : (i+1)*c]
}

// SetValue copies v into value i.
func (a *Attribute) SetValue(i int, v []float32) {
	copy(a.Value(i), v)
}

// MappedIndex resolves point p to a value index. Points past the end of an
// explicit map resolve by identity.
func (a *Attribute) MappedIndex(p int) int {
	if p < len(a.PointMap) {
		return int(a.PointMap[p])
	}
	return p
}

// MappedValue returns the value for point p, or false if p resolves
// outside the stored values.
func (a *Attribute) MappedValue(p int) ([]float32, bool) {
	idx := a.MappedIndex(p)
	if idx < 0 || idx >= a.NumValues() {
		return nil, false
	}
	return a.Value(idx), true
}

// DenseLen is the number of points a per-point array for this slot covers:
// the larger of the value count and the map length.
func (a *Attribute) DenseLen() int {
	return max(a.NumValues(), len(a.PointMap))
}

// explicitMap returns the point map materialised for n points.
func (a *Attribute) explicitMap(n int) []uint32 {
	m := make([]uint32, n)
	for p := range m {
		m[p] = uint32(a.MappedIndex(p))
	}
	return m
}
