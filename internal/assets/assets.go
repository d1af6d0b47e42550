// Package assets resolves terrain resource paths and watches them for changes.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when a resource exists under no search root.
var ErrNotFound = errors.New("asset not found")

// Resolver finds resource files under a list of search roots.
// Roots are searched in reverse order (last added = highest priority).
type Resolver struct {
	roots []string
	mu    sync.RWMutex
}

// NewResolver creates a resolver with the given roots, lowest priority first.
func NewResolver(roots ...string) *Resolver {
	r := &Resolver{}
	for _, root := range roots {
		r.AddRoot(root)
	}
	return r
}

// AddRoot adds a search root with the highest priority so far.
func (r *Resolver) AddRoot(dir string) {
	if dir == "" {
		return
	}
	r.mu.Lock()
	r.roots = append(r.roots, dir)
	r.mu.Unlock()
}

// Roots returns the search roots, lowest priority first.
func (r *Resolver) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.roots...)
}

// Resolve returns the path of an existing file named name. Absolute names
// are only checked for existence; relative names are tried under each root
// and finally against the working directory.
func (r *Resolver) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(r.roots[i], name)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	if isFile(name) {
		return name, nil
	}

	return "", fmt.Errorf("%w: %s (searched %d roots)", ErrNotFound, name, len(r.roots))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
