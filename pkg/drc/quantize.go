package drc

import (
	"fmt"
	"math"
)

// quantizer maps float components onto integers in [0, 2^bits-1] using one
// shared range per attribute and a per-component origin.
type quantizer struct {
	bits   int
	origin []float32
	rng    float32
}

func (q *quantizer) maxQuantized() float64 {
	return float64(uint32(1)<<q.bits - 1)
}

// newQuantizer fits a quantizer to values laid out with comps floats each.
func newQuantizer(values []float32, comps, bits int) (*quantizer, error) {
	q := &quantizer{bits: bits, origin: make([]float32, comps)}
	if len(values) == 0 {
		return q, nil
	}

	lo := make([]float32, comps)
	hi := make([]float32, comps)
	copy(lo, values[:comps])
	copy(hi, values[:comps])
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("%w: %v", ErrNonFinite, v)
		}
		c := i % comps
		lo[c] = min(lo[c], v)
		hi[c] = max(hi[c], v)
	}

	var rng float64
	for c := 0; c < comps; c++ {
		rng = max(rng, float64(hi[c])-float64(lo[c]))
	}
	copy(q.origin, lo)

	// The stored range must not be smaller than the true one or the top of
	// the range would clamp.
	q.rng = float32(rng)
	if float64(q.rng) < rng {
		q.rng = math.Nextafter32(q.rng, float32(math.Inf(1)))
	}
	if math.IsInf(float64(q.rng), 0) {
		return nil, fmt.Errorf("%w: range overflows float32", ErrNonFinite)
	}
	return q, nil
}

// Step returns the distance between adjacent quantized values.
func (q *quantizer) Step() float64 {
	return float64(q.rng) / q.maxQuantized()
}

func (q *quantizer) quantize(v float32, c int) uint32 {
	if q.rng == 0 {
		return 0
	}
	x := (float64(v) - float64(q.origin[c])) / float64(q.rng) * q.maxQuantized()
	x = math.Round(x)
	if x < 0 {
		return 0
	}
	if m := q.maxQuantized(); x > m {
		return uint32(m)
	}
	return uint32(x)
}

func (q *quantizer) dequantize(u uint32, c int) float32 {
	if q.rng == 0 {
		return q.origin[c]
	}
	return float32(float64(q.origin[c]) + float64(u)*float64(q.rng)/q.maxQuantized())
}

// QuantizationStep returns the quantization step for a value range and bit
// depth: the maximum decoded error is half of it.
func QuantizationStep(valueRange float64, bits int) float64 {
	if bits <= 0 {
		return 0
	}
	return valueRange / float64(uint32(1)<<bits-1)
}
