package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/ports"
)

// ErrUnknownDirectory is returned for a directory kind nobody registered.
var ErrUnknownDirectory = errors.New("unknown sponsor directory")

// Factory opens one directory backend from configuration.
type Factory func(ctx context.Context, cfg config.DirectoryConfig) (ports.SponsorDirectory, error)

// Registry keeps a mapping from directory kinds to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry knows the static, yaml and sqlite kinds. An empty sqlite
// database is seeded with the built-in records.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(config.DirectoryStatic, func(context.Context, config.DirectoryConfig) (ports.SponsorDirectory, error) {
		return NewStaticDirectory(), nil
	})
	r.Register(config.DirectoryYAML, func(_ context.Context, cfg config.DirectoryConfig) (ports.SponsorDirectory, error) {
		return LoadYAMLDirectory(cfg.Path)
	})
	r.Register(config.DirectorySQLite, func(ctx context.Context, cfg config.DirectoryConfig) (ports.SponsorDirectory, error) {
		dir, err := OpenSQLiteDirectory(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if _, err := dir.SeedIfEmpty(ctx, NewStaticDirectory().Records()...); err != nil {
			_ = dir.Close()
			return nil, fmt.Errorf("seed sqlite directory: %w", err)
		}
		return dir, nil
	})
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(kind string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[kind] = factory
}

// Kinds lists the registered kinds in order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Open resolves cfg.Kind and opens the backend. The returned closer is never nil.
func (r *Registry) Open(ctx context.Context, cfg config.DirectoryConfig) (ports.SponsorDirectory, io.Closer, error) {
	factory, ok := r.factories[cfg.Kind]
	if !ok {
		return nil, nopCloser{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownDirectory, cfg.Kind, r.Kinds())
	}
	dir, err := factory(ctx, cfg)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open %s directory: %w", cfg.Kind, err)
	}
	if c, ok := dir.(io.Closer); ok {
		return dir, c, nil
	}
	return dir, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
