package drcio

import (
	"errors"
	"fmt"

	"github.com/Faultbox/drcgeom/pkg/scene"
)

// Handler errors. Read failures of any cause report StatusFileNotFound; the
// wrapped error tells a missing file from an undecodable one.
var (
	ErrNotHandled    = errors.New("file extension not handled")
	ErrFileNotFound  = errors.New("file not found")
	ErrDecodeFailure = errors.New("failed to decode geometry")
	ErrEncodeFailure = errors.New("failed to encode geometry")
	ErrWriteFailure  = errors.New("failed to write file")
)

// Status is the outcome reported to the host.
type Status int

const (
	StatusFileSaved Status = iota
	StatusFileRead
	StatusNotHandled
	StatusFileNotFound
	StatusErrorInWritingFile
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusFileSaved:
		return "file saved"
	case StatusFileRead:
		return "file read"
	case StatusNotHandled:
		return "file not handled"
	case StatusFileNotFound:
		return "file not found"
	case StatusErrorInWritingFile:
		return "error in writing file"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ReadResult is returned by Reader.ReadFile.
type ReadResult struct {
	Status  Status
	Group   *scene.Group
	Decoded *Decoded
	Err     error
}

// Success reports whether a group was read.
func (r ReadResult) Success() bool {
	return r.Status == StatusFileRead
}

// Message returns a human-readable description of the result.
func (r ReadResult) Message() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Status.String()
}

// WriteResult is returned by Writer.WriteFile.
type WriteResult struct {
	Status  Status
	Encoded *Encoded
	Err     error
}

// Success reports whether the file was saved.
func (r WriteResult) Success() bool {
	return r.Status == StatusFileSaved
}

// Message returns a human-readable description of the result.
func (r WriteResult) Message() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Status.String()
}

func notHandled(path string) error {
	return fmt.Errorf("%w: %s", ErrNotHandled, path)
}
