// Package formats converts between mesh interchange files and flat vertex
// buffers.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// ErrUnknownFormat is returned for extensions this package does not handle.
var ErrUnknownFormat = errors.New("unknown mesh format")

// Format identifies an interchange format.
type Format int

const (
	FormatOBJ Format = iota
	FormatSTL
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "OBJ"
	case FormatSTL:
		return "STL"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// FormatFromPath picks a format by file extension, ignoring case.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ, nil
	case ".stl":
		return FormatSTL, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ParseFile reads path in the format named by its extension.
func ParseFile(path string) (*geometry.Flat, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSTL:
		return ParseSTLFile(path)
	default:
		return ParseOBJFile(path)
	}
}

// WriteFile writes f to path in the format named by its extension.
func WriteFile(path string, f *geometry.Flat) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatSTL:
		err = WriteSTL(&buf, f)
	default:
		err = WriteOBJ(&buf, f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
