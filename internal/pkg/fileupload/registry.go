package fileupload

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Registry remembers the temp files the upload transport created for one
// request. Save refuses temp paths it does not know, so a forged path can
// never be moved out of place.
type Registry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]struct{})}
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (r *Registry) Register(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[normalize(path)] = struct{}{}
}

// IsUploaded reports whether path is a temp file of this request that has
// not been saved yet. A nil registry knows no files.
func (r *Registry) IsUploaded(path string) bool {
	if r == nil || path == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.paths[normalize(path)]
	return ok
}

// Release forgets path after its file has been moved away.
func (r *Registry) Release(path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, normalize(path))
}

// Len returns the number of temp files still owned by the request.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

// Cleanup deletes every temp file that was not saved.
func (r *Registry) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for path := range r.paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
		delete(r.paths, path)
	}
	return errors.Join(errs...)
}
