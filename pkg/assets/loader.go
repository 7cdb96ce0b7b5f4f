package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownAsset is returned for a path no loader can resolve.
var ErrUnknownAsset = errors.New("unknown asset")

// Loader resolves an asset path to a freshly built model.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

// Builder constructs a new model instance on every call.
type Builder func() *Model

// BuiltinLoader serves procedurally built models registered by path.
type BuiltinLoader struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewBuiltinLoader returns a loader with builtin:car and builtin:track registered.
func NewBuiltinLoader() *BuiltinLoader {
	l := &BuiltinLoader{builders: make(map[string]Builder)}
	l.Register(BuiltinCar, NewCar)
	l.Register(BuiltinTrack, NewTrack)
	return l
}

// Register binds path to b, replacing any previous builder.
func (l *BuiltinLoader) Register(path string, b Builder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.builders[path] = b
}

// Paths lists the registered paths in sorted order.
func (l *BuiltinLoader) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	paths := make([]string, 0, len(l.builders))
	for p := range l.builders {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Load implements Loader.
func (l *BuiltinLoader) Load(ctx context.Context, path string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	build, ok := l.builders[path]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, path)
	}

	m := build()
	if m == nil || m.Root == nil {
		return nil, fmt.Errorf("builder for %q returned an empty model", path)
	}
	return m, nil
}
