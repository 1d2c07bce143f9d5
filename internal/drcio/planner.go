package drcio

import (
	"fmt"
	"strings"

	"github.com/Faultbox/drcgeom/pkg/drc"
	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// QuantizationSetting is one line of the settings report.
type QuantizationSetting struct {
	Semantic geometry.Semantic
	Bits     int // 0 means no quantization
}

// SettingsReport describes the encoder settings chosen for one write.
type SettingsReport struct {
	CompressionLevel int
	Speed            int
	Attributes       []QuantizationSetting
}

var reportNames = [geometry.NumSemantics]string{
	geometry.Position: "Positions",
	geometry.Normal:   "Normals",
	geometry.TexCoord: "Texture coordinates",
	geometry.Color:    "Colors",
}

// String renders the report as indented lines.
func (r SettingsReport) String() string {
	var b strings.Builder
	b.WriteString("Encoder options:\n")
	fmt.Fprintf(&b, "  Compression level = %d\n", r.CompressionLevel)
	fmt.Fprintf(&b, "  Speed = %d\n", r.Speed)
	for _, a := range r.Attributes {
		if a.Bits <= 0 {
			fmt.Fprintf(&b, "  %s: No quantization\n", reportNames[a.Semantic])
		} else {
			fmt.Fprintf(&b, "  %s: Quantization = %d bits\n", reportNames[a.Semantic], a.Bits)
		}
	}
	return b.String()
}

// Bits returns the reported depth for s and whether s was present.
func (r SettingsReport) Bits(s geometry.Semantic) (int, bool) {
	for _, a := range r.Attributes {
		if a.Semantic == s {
			return a.Bits, true
		}
	}
	return 0, false
}

// Speed converts a compression level to the codec speed: higher levels are
// slower and compress harder.
func Speed(compressionLevel int) int {
	return drc.ClampSpeed(drc.MaxSpeed - compressionLevel)
}

// Plan builds encoder options for the slots present in pc. Semantics without
// data are skipped even when bits are configured for them.
func Plan(opts Options, pc *geometry.PointCloud) (*drc.EncoderOptions, SettingsReport) {
	speed := Speed(opts.CompressionLevel)

	eo := drc.NewEncoderOptions()
	eo.SetSpeed(speed, speed)

	report := SettingsReport{
		CompressionLevel: opts.CompressionLevel,
		Speed:            speed,
	}
	for _, s := range geometry.Semantics {
		if !pc.Has(s) {
			continue
		}
		bits := max(opts.QuantizationBits(s), 0)
		if bits > 0 {
			eo.SetAttributeQuantization(s, bits)
		}
		report.Attributes = append(report.Attributes, QuantizationSetting{Semantic: s, Bits: bits})
	}
	return eo, report
}
