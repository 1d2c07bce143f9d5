package vecmath

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec3
	Empty    bool
}

// BoundsOf returns the bounds of points. No points gives an empty box.
func BoundsOf(points [][3]float32) Bounds {
	if len(points) == 0 {
		return Bounds{Empty: true}
	}
	b := Bounds{Min: V3(points[0]), Max: V3(points[0])}
	for _, p := range points[1:] {
		b.Extend(V3(p))
	}
	return b
}

// Extend grows b to contain p.
func (b *Bounds) Extend(p Vec3) {
	if b.Empty {
		*b = Bounds{Min: p, Max: p}
		return
	}
	b.Min = Vec3{min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z)}
	b.Max = Vec3{max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z)}
}

// Size returns the extent along each axis.
func (b Bounds) Size() Vec3 {
	if b.Empty {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest axis extent.
func (b Bounds) MaxExtent() float32 {
	s := b.Size()
	return max(s.X, s.Y, s.Z)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
