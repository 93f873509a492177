package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/matext/internal/cache"
)

// Source resolves an asset name to a decoded manifest.
// Open runs on a background worker and may block.
type Source interface {
	Open(ctx context.Context, name string) (*Manifest, error)
}

// FSSource loads TOML manifests from a file system. Decoded manifests are
// cached by cleaned path, so requesting the same asset twice decodes it once.
type FSSource struct {
	fsys  fs.FS
	cache *cache.Cache[string, *Manifest]
}

// NewFSSource returns a source reading manifests from fsys, keeping at most
// cacheSize decoded manifests (cache.DefaultCapacity if <= 0).
func NewFSSource(fsys fs.FS, cacheSize int) *FSSource {
	return &FSSource{
		fsys:  fsys,
		cache: cache.New[string, *Manifest](cacheSize),
	}
}

// Open implements Source.
func (s *FSSource) Open(ctx context.Context, name string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// File systems may be case sensitive, so the cache is keyed by the
	// exact path opened, not by Key.
	p := path.Clean(norm.NFC.String(strings.TrimSpace(name)))
	if !fs.ValidPath(p) {
		return nil, fmt.Errorf("%w: invalid path %q", ErrNotFound, name)
	}
	if m, ok := s.cache.Get(p); ok {
		return m, nil
	}
	f, err := s.fsys.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	defer f.Close()

	m, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s.cache.Set(p, m)
	return m, nil
}

// CacheStats returns the manifest cache counters.
func (s *FSSource) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// MapSource is an in-memory Source keyed by Key(name).
type MapSource struct {
	mu        sync.RWMutex
	manifests map[string]*Manifest
}

// NewMapSource returns a source serving the given manifests by name.
func NewMapSource(manifests ...*Manifest) *MapSource {
	s := &MapSource{manifests: make(map[string]*Manifest, len(manifests))}
	for _, m := range manifests {
		s.Add(m)
	}
	return s
}

// Add registers m under m.Name, replacing any previous entry.
func (s *MapSource) Add(m *Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[Key(m.Name)] = m
}

// Open implements Source.
func (s *MapSource) Open(ctx context.Context, name string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	m, ok := s.manifests[Key(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
