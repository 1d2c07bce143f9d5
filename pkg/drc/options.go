// Package drc encodes geometry attribute stores into a compact, self-describing
// binary container and decodes them back.
package drc

import (
	"fmt"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// Speed bounds. 0 is the slowest, best compressing setting.
const (
	MinSpeed     = 0
	MaxSpeed     = 10
	DefaultSpeed = 5
)

// Quantization bounds in bits per component.
const (
	MinQuantizationBits = 1
	MaxQuantizationBits = 30
)

// EncoderOptions controls quantization and the speed/size trade-off.
type EncoderOptions struct {
	quantization [geometry.NumSemantics]int
	encodeSpeed  int
	decodeSpeed  int
}

// NewEncoderOptions returns options with no quantization and default speed.
func NewEncoderOptions() *EncoderOptions {
	return &EncoderOptions{
		encodeSpeed: DefaultSpeed,
		decodeSpeed: DefaultSpeed,
	}
}

// SetAttributeQuantization requests quantization of semantic s at bits per
// component. bits <= 0 disables quantization for s.
func (o *EncoderOptions) SetAttributeQuantization(s geometry.Semantic, bits int) {
	if !s.Valid() {
		return
	}
	if bits < 0 {
		bits = 0
	}
	o.quantization[s] = bits
}

// AttributeQuantization returns the bits requested for s (0 = none).
func (o *EncoderOptions) AttributeQuantization(s geometry.Semantic) int {
	if !s.Valid() {
		return 0
	}
	return o.quantization[s]
}

// SetSpeed sets both speed knobs, clamped to [MinSpeed, MaxSpeed].
func (o *EncoderOptions) SetSpeed(encodeSpeed, decodeSpeed int) {
	o.encodeSpeed = ClampSpeed(encodeSpeed)
	o.decodeSpeed = ClampSpeed(decodeSpeed)
}

// EncodeSpeed returns the encoder speed knob.
func (o *EncoderOptions) EncodeSpeed() int { return o.encodeSpeed }

// DecodeSpeed returns the decoder speed knob.
func (o *EncoderOptions) DecodeSpeed() int { return o.decodeSpeed }

// ClampSpeed limits s to the valid speed range.
func ClampSpeed(s int) int {
	return min(max(s, MinSpeed), MaxSpeed)
}

func (o *EncoderOptions) validate() error {
	for s, bits := range o.quantization {
		if bits != 0 && (bits < MinQuantizationBits || bits > MaxQuantizationBits) {
			return fmt.Errorf("%w: %s requests %d bits", ErrInvalidQuantization, geometry.Semantic(s), bits)
		}
	}
	return nil
}

// method picks the entropy stage. Fast decode favours lz4, everything else
// goes through zstd.
func (o *EncoderOptions) method() Method {
	if o.decodeSpeed >= 9 {
		return MethodLZ4
	}
	return MethodZstd
}
