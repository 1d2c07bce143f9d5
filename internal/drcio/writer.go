package drcio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/drcgeom/internal/logger"
	"github.com/Faultbox/drcgeom/pkg/geometry"
	"github.com/Faultbox/drcgeom/pkg/scene"
)

// Writer encodes geometry and saves it as .drc files.
type Writer struct {
	Options Options
	// Atomic writes go through a temporary file in the target directory.
	Atomic bool
}

// NewWriter returns a writer with atomic saves enabled.
func NewWriter(opts Options) *Writer {
	return &Writer{Options: opts, Atomic: true}
}

// WriteFile encodes f and writes it to path. optionString may contain
// PointCloudToken to force point-cloud output.
func (w *Writer) WriteFile(f *geometry.Flat, path, optionString string) WriteResult {
	if !AcceptsExtension(path) {
		return WriteResult{Status: StatusNotHandled, Err: notHandled(path)}
	}

	opts := w.Options
	if RequestsPointCloud(optionString) {
		opts.PointCloud = true
	}

	enc, err := EncodeFlat(f, opts)
	if err != nil {
		logger.Warn("encode failed", zap.String("path", path), zap.Error(err))
		return WriteResult{Status: StatusErrorInWritingFile, Err: err}
	}

	logger.Debug("encoder settings", zap.String("path", path), zap.String("report", enc.Report.String()))

	if err := w.save(path, enc.Data); err != nil {
		logger.Warn("write failed", zap.String("path", path), zap.Error(err))
		return WriteResult{Status: StatusErrorInWritingFile, Encoded: enc, Err: err}
	}

	logger.Info("file saved",
		zap.String("path", path),
		zap.Stringer("kind", enc.Kind),
		zap.Int("points_in", enc.Dedup.PointsBefore),
		zap.Int("points", enc.NumPoints),
		zap.Int("faces", enc.NumFaces),
		zap.String("size", humanize.Bytes(uint64(len(enc.Data)))),
		zap.Duration("encode_time", enc.EncodeTime),
	)
	return WriteResult{Status: StatusFileSaved, Encoded: enc}
}

// WriteGroup collects the triangles of g and writes them. A group holding only
// point drawables contributes its points instead.
func (w *Writer) WriteGroup(g *scene.Group, path, optionString string) WriteResult {
	f := g.Collect()
	if f.VertexCount() == 0 {
		f = g.CollectPoints()
	}
	return w.WriteFile(f, path, optionString)
}

func (w *Writer) save(path string, data []byte) error {
	if !w.Atomic {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailure, err)
		}
		return nil
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary sibling of path, syncs it and
// renames it into place. The temporary file is removed on failure.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
