package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Codec reads and writes one tabular file format.
type Codec interface {
	Extensions() []string
	Decode(r io.Reader) (*Table, error)
	Encode(w io.Writer, t *Table) error
}

// Registry keeps a mapping from file extensions to codecs.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry builds a registry with the provided codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: map[string]Codec{}}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a codec for each of its extensions.
func (r *Registry) Register(codec Codec) {
	if r.codecs == nil {
		r.codecs = map[string]Codec{}
	}
	for _, ext := range codec.Extensions() {
		r.codecs[strings.ToLower(ext)] = codec
	}
}

// Resolve returns the codec for path's extension or an error if it is absent.
func (r *Registry) Resolve(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if codec, ok := r.codecs[ext]; ok {
		return codec, nil
	}
	return nil, fmt.Errorf("no codec registered for %q", ext)
}

// Load opens path and decodes it with the matching codec.
func (r *Registry) Load(path string) (*Table, error) {
	codec, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	t, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}

// Save encodes t into path. The file is written to a sibling temp file
// first and renamed, so a failed write never truncates an older snapshot.
func (r *Registry) Save(path string, t *Table) error {
	codec, err := r.Resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := codec.Encode(tmp, t); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
