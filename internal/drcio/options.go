// Package drcio reads and writes .drc files: it turns flat vertex buffers into
// deduplicated, quantized, encoded geometry and expands encoded geometry back
// into renderable groups.
package drcio

import (
	"path/filepath"
	"strings"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// Extension is the file extension handled by this package.
const Extension = "drc"

// PointCloudToken in a write option string selects point-cloud output.
const PointCloudToken = "draco_point_cloud"

// Options controls the write path.
type Options struct {
	PositionBits     int  `yaml:"position_bits" toml:"position_bits"`
	NormalBits       int  `yaml:"normal_bits" toml:"normal_bits"`
	TexCoordBits     int  `yaml:"texcoord_bits" toml:"texcoord_bits"`
	CompressionLevel int  `yaml:"compression_level" toml:"compression_level"`
	PointCloud       bool `yaml:"point_cloud" toml:"point_cloud"`
}

// DefaultOptions returns the default quantization depths and compression level.
func DefaultOptions() Options {
	return Options{
		PositionBits:     14,
		NormalBits:       10,
		TexCoordBits:     12,
		CompressionLevel: 0,
	}
}

// QuantizationBits returns the configured depth for s. Colors are never
// quantized.
func (o Options) QuantizationBits(s geometry.Semantic) int {
	switch s {
	case geometry.Position:
		return o.PositionBits
	case geometry.Normal:
		return o.NormalBits
	case geometry.TexCoord:
		return o.TexCoordBits
	default:
		return 0
	}
}

// RequestsPointCloud reports whether a whitespace-separated option string
// contains PointCloudToken. Other tokens are ignored.
func RequestsPointCloud(optionString string) bool {
	for _, tok := range strings.Fields(optionString) {
		if tok == PointCloudToken {
			return true
		}
	}
	return false
}

// AcceptsExtension reports whether path has the .drc extension, ignoring case.
func AcceptsExtension(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return strings.EqualFold(ext, Extension)
}
