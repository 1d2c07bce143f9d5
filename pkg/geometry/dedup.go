package geometry

import (
	"fmt"
	"math"
)

// valueKey holds the bit patterns of up to four float32 components.
type valueKey [4]uint32

func makeValueKey(v []float32) valueKey {
	var k valueKey
	for i, f := range v {
		k[i] = math.Float32bits(f)
	}
	return k
}

// pointKey holds the value index of every present slot for one point.
type pointKey [NumSemantics]uint32

// DedupStats records point counts around deduplication.
type DedupStats struct {
	PointsBefore int
	PointsAfter  int
}

// DeduplicateAttributeValues collapses bit-identical values within each slot
// and drops values no point references. Every slot ends with an explicit
// point map. Values keep first-reference order.
func (pc *PointCloud) DeduplicateAttributeValues() error {
	for _, a := range pc.Attributes() {
		if err := a.deduplicateValues(pc.NumPoints); err != nil {
			return err
		}
	}
	return nil
}

func (a *Attribute) deduplicateValues(numPoints int) error {
	n := a.NumValues()
	c := a.Components()

	remap := make([]int32, n)
	for i := range remap {
		remap[i] = -1
	}
	seen := make(map[valueKey]uint32)
	values := make([]float32, 0, len(a.Values))
	pointMap := make([]uint32, numPoints)

	for p := 0; p < numPoints; p++ {
		old := a.MappedIndex(p)
		if old < 0 || old >= n {
			return fmt.Errorf("%w: %s point %d -> value %d of %d", ErrInvalidMapping, a.Semantic, p, old, n)
		}
		if idx := remap[old]; idx >= 0 {
			pointMap[p] = uint32(idx)
			continue
		}
		v := a.Value(old)
		key := makeValueKey(v)
		idx, ok := seen[key]
		if !ok {
			idx = uint32(len(values) / c)
			values = append(values, v...)
			seen[key] = idx
		}
		remap[old] = int32(idx)
		pointMap[p] = idx
	}

	a.Values = values
	a.PointMap = pointMap
	return nil
}

// deduplicatePoints merges points that reference the same value in every
// slot. It returns the old-to-new point remapping.
func (pc *PointCloud) deduplicatePoints() []uint32 {
	attrs := pc.Attributes()
	remap := make([]uint32, pc.NumPoints)
	maps := make([][]uint32, len(attrs))
	seen := make(map[pointKey]uint32)

	for p := 0; p < pc.NumPoints; p++ {
		var key pointKey
		for i, a := range attrs {
			key[i] = uint32(a.MappedIndex(p))
		}
		id, ok := seen[key]
		if !ok {
			id = uint32(len(seen))
			seen[key] = id
			for i := range attrs {
				maps[i] = append(maps[i], key[i])
			}
		}
		remap[p] = id
	}

	for i, a := range attrs {
		a.PointMap = maps[i]
	}
	pc.NumPoints = len(seen)
	return remap
}

// DeduplicatePointIDs merges points whose values match across all slots.
func (pc *PointCloud) DeduplicatePointIDs() {
	pc.deduplicatePoints()
}

// DeduplicatePointIDs merges points whose values match across all slots and
// rebases face corners into the compacted point space.
func (m *Mesh) DeduplicatePointIDs() error {
	for i, f := range m.Faces {
		for _, c := range f {
			if int(c) >= m.NumPoints {
				return fmt.Errorf("%w: face %d corner %d of %d points", ErrInvalidFace, i, c, m.NumPoints)
			}
		}
	}
	remap := m.deduplicatePoints()
	for i := range m.Faces {
		for j, c := range m.Faces[i] {
			m.Faces[i][j] = remap[c]
		}
	}
	return nil
}

// Deduplicate compacts values, then merges points, on either geometry kind.
func Deduplicate(g *Geometry) (DedupStats, error) {
	pc := g.PointCloud()
	stats := DedupStats{PointsBefore: pc.NumPoints}

	if err := pc.DeduplicateAttributeValues(); err != nil {
		return stats, err
	}
	if m, ok := g.Mesh(); ok {
		if err := m.DeduplicatePointIDs(); err != nil {
			return stats, err
		}
	} else {
		pc.DeduplicatePointIDs()
	}

	stats.PointsAfter = pc.NumPoints
	return stats, nil
}
