// Package worldformat implements pluggable world file load/save adapters
// keyed by file extension.
package worldformat

import (
	"fmt"

	"github.com/obsidian-net/classicd/internal/world"
)

// Format loads and saves one world file representation.
type Format interface {
	// Name identifies the format for config's defaultSaveFormat field.
	Name() string
	// Extension is the file suffix this format owns, including the dot.
	Extension() string
	// SupportsMetadata reports whether this format can persist the
	// additionalMetadata table (RawGzip cannot).
	SupportsMetadata() bool
	Load(path string) (*world.World, error)
	Save(w *world.World, path string) error
}

// Registry resolves a file extension to a Format.
type Registry struct {
	formats map[string]Format
}

func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format)}
}

// ErrDuplicateExtension is returned by Register when the extension is
// already owned by another format.
type ErrDuplicateExtension struct{ Extension string }

func (e *ErrDuplicateExtension) Error() string {
	return fmt.Sprintf("worldformat: extension %q already registered", e.Extension)
}

func (r *Registry) Register(f Format) error {
	if _, exists := r.formats[f.Extension()]; exists {
		return &ErrDuplicateExtension{Extension: f.Extension()}
	}
	r.formats[f.Extension()] = f
	return nil
}

func (r *Registry) ByExtension(ext string) (Format, bool) {
	f, ok := r.formats[ext]
	return f, ok
}

func (r *Registry) ByName(name string) (Format, bool) {
	for _, f := range r.formats {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Extensions reports every extension a registered format claims, for
// callers that need to recognize a save file by suffix without
// guessing at one format's name (the world directory scan at startup).
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		out = append(out, ext)
	}
	return out
}
