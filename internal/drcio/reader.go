package drcio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/drcgeom/internal/logger"
)

// Reader loads .drc files into scene groups.
type Reader struct {
	// SearchPaths are tried in order for relative paths that do not exist
	// as given.
	SearchPaths []string
}

// NewReader returns a reader that searches the given directories.
func NewReader(searchPaths ...string) *Reader {
	return &Reader{SearchPaths: searchPaths}
}

// ReadFile decodes the file at path. Every failure after the extension check
// reports StatusFileNotFound.
func (r *Reader) ReadFile(path string) ReadResult {
	if !AcceptsExtension(path) {
		return ReadResult{Status: StatusNotHandled, Err: notHandled(path)}
	}

	resolved, err := r.find(path)
	if err != nil {
		return ReadResult{Status: StatusFileNotFound, Err: err}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return ReadResult{Status: StatusFileNotFound, Err: fmt.Errorf("%w: %w", ErrFileNotFound, err)}
	}
	if len(data) == 0 {
		return ReadResult{Status: StatusFileNotFound, Err: fmt.Errorf("%w: %s is empty", ErrFileNotFound, resolved)}
	}

	dec, err := DecodeBuffer(data)
	if err != nil {
		logger.Warn("decode failed", zap.String("path", resolved), zap.Error(err))
		return ReadResult{Status: StatusFileNotFound, Err: err}
	}

	name := strings.TrimSuffix(filepath.Base(resolved), filepath.Ext(resolved))
	group := NewGroup(name, dec)

	logger.Info("file read",
		zap.String("path", resolved),
		zap.Stringer("kind", dec.Kind),
		zap.Int("points", dec.NumPoints),
		zap.Int("faces", dec.NumFaces),
		zap.Int("vertices", dec.Flat.VertexCount()),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
		zap.Duration("decode_time", dec.DecodeTime),
	)
	return ReadResult{Status: StatusFileRead, Group: group, Decoded: dec}
}

func (r *Reader) find(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) || filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	for _, dir := range r.SearchPaths {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
}
