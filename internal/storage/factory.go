package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned by New for a kind no backend registered.
var ErrUnknownKind = errors.New("storage: unknown kind")

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string
	// Options carries backend-specific settings such as "database" for mongo.
	Options map[string]any
}

// Factory opens a Store for cfg.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Backends call it from init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the Store registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownKind, cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds lists registered backends, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
