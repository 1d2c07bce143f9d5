package drc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/drcgeom/pkg/geometry"
)

// Container errors.
var (
	ErrInvalidHeader       = errors.New("invalid drc magic: expected 'DRACO'")
	ErrUnsupportedVersion  = errors.New("unsupported drc version")
	ErrUnknownKind         = errors.New("unknown encoded geometry kind")
	ErrKindMismatch        = errors.New("encoded geometry kind mismatch")
	ErrTruncated           = errors.New("truncated drc data")
	ErrCorrupt             = errors.New("corrupt drc payload")
	ErrInvalidQuantization = errors.New("invalid quantization bits")
	ErrNonFinite           = errors.New("cannot quantize non-finite value")
)

const magic = "DRACO"

// Bitstream version written by this package.
const (
	VersionMajor uint8 = 2
	VersionMinor uint8 = 2
)

// headerSize: magic(5) major(1) minor(1) kind(1) method(1) flags(2) bodyLen(4).
const headerSize = 15

// Method identifies the entropy stage applied to the body.
type Method uint8

const (
	MethodStored Method = 0
	MethodLZ4    Method = 1
	MethodZstd   Method = 2
)

// String returns a human-readable method name.
func (m Method) String() string {
	switch m {
	case MethodStored:
		return "stored"
	case MethodLZ4:
		return "lz4"
	case MethodZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Header is the fixed-size prefix of an encoded buffer.
type Header struct {
	Major   uint8
	Minor   uint8
	Kind    geometry.Kind
	Method  Method
	Flags   uint16
	BodyLen uint32 // uncompressed body length
}

// Version returns the version as "Major.Minor".
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.Major, h.Minor)
}

func (h Header) appendTo(dst []byte) []byte {
	dst = append(dst, magic...)
	dst = append(dst, h.Major, h.Minor, uint8(h.Kind), uint8(h.Method))
	dst = binary.LittleEndian.AppendUint16(dst, h.Flags)
	dst = binary.LittleEndian.AppendUint32(dst, h.BodyLen)
	return dst
}

// ReadHeader parses and validates the container header.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < len(magic) {
		return h, ErrTruncated
	}
	if string(data[:len(magic)]) != magic {
		return h, ErrInvalidHeader
	}
	if len(data) < headerSize {
		return h, ErrTruncated
	}

	h.Major = data[5]
	h.Minor = data[6]
	h.Kind = geometry.Kind(data[7])
	h.Method = Method(data[8])
	h.Flags = binary.LittleEndian.Uint16(data[9:11])
	h.BodyLen = binary.LittleEndian.Uint32(data[11:15])

	if h.Major != VersionMajor {
		return h, fmt.Errorf("%w: %s", ErrUnsupportedVersion, h.Version())
	}
	if h.Kind != geometry.KindMesh && h.Kind != geometry.KindPointCloud {
		return h, fmt.Errorf("%w: %d", ErrUnknownKind, h.Kind)
	}
	if h.Method > MethodZstd {
		return h, fmt.Errorf("%w: unknown method %d", ErrCorrupt, h.Method)
	}
	return h, nil
}

// EncodedGeometryKind reads the geometry kind tag from an encoded buffer.
func EncodedGeometryKind(data []byte) (geometry.Kind, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return 0, err
	}
	return h.Kind, nil
}
