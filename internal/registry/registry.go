// Package registry maps file extensions to read and write handlers.
package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/drcgeom/internal/drcio"
	"github.com/Faultbox/drcgeom/pkg/scene"
)

// ReadFunc loads the file at path.
type ReadFunc func(path string) drcio.ReadResult

// WriteFunc saves g to path. options is the host's option string.
type WriteFunc func(g *scene.Group, path, options string) drcio.WriteResult

// Handler serves one file extension.
type Handler struct {
	Extension   string
	Description string
	Read        ReadFunc
	Write       WriteFunc
}

// DRC returns the handler for .drc files.
func DRC(r *drcio.Reader, w *drcio.Writer) Handler {
	return Handler{
		Extension:   drcio.Extension,
		Description: "Draco compressed geometry",
		Read:        r.ReadFile,
		Write:       w.WriteGroup,
	}
}

// Table is a fixed set of handlers keyed by lower-case extension.
type Table struct {
	handlers map[string]Handler
}

// New builds a table. Extensions must be unique, ignoring case.
func New(handlers ...Handler) (*Table, error) {
	t := &Table{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		ext := normalize(h.Extension)
		if ext == "" {
			return nil, fmt.Errorf("handler %q has no extension", h.Description)
		}
		if _, dup := t.handlers[ext]; dup {
			return nil, fmt.Errorf("duplicate handler for extension %q", ext)
		}
		t.handlers[ext] = h
	}
	return t, nil
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Lookup finds the handler for path's extension.
func (t *Table) Lookup(path string) (Handler, bool) {
	h, ok := t.handlers[normalize(filepath.Ext(path))]
	return h, ok
}

// Extensions lists registered extensions in sorted order.
func (t *Table) Extensions() []string {
	exts := make([]string, 0, len(t.handlers))
	for ext := range t.handlers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Read dispatches to the handler for path.
func (t *Table) Read(path string) drcio.ReadResult {
	h, ok := t.Lookup(path)
	if !ok || h.Read == nil {
		return drcio.ReadResult{Status: drcio.StatusNotHandled, Err: fmt.Errorf("%w: %s", drcio.ErrNotHandled, path)}
	}
	return h.Read(path)
}

// Write dispatches to the handler for path.
func (t *Table) Write(g *scene.Group, path, options string) drcio.WriteResult {
	h, ok := t.Lookup(path)
	if !ok || h.Write == nil {
		return drcio.WriteResult{Status: drcio.StatusNotHandled, Err: fmt.Errorf("%w: %s", drcio.ErrNotHandled, path)}
	}
	return h.Write(g, path, options)
}
