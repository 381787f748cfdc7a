package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/storage"
)

// TestRegistrationUsesNewRepositoryHook verifies that the "sqlite" backend
// registered in init() goes through the newRepository hook and that
// wrappedRepo delegates Close.
func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg   Config
		closed   bool
		fakeRepo = &Repository{}
	)
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	s, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "file:maude.db?cache=shared"})
	require.NoError(t, err)
	assert.Equal(t, "file:maude.db?cache=shared", gotCfg.DSN)
	assert.Contains(t, storage.Kinds(), "sqlite")

	w, ok := s.(*wrappedRepo)
	require.True(t, ok, "storage.New() type = %T", s)
	assert.Same(t, fakeRepo, w.Repository)

	s.Close()
	assert.True(t, closed, "Close did not invoke closeFn")
}

func TestRegistrationOpensRealStore(t *testing.T) {
	s, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer s.Close()

	c, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.Counts{}, c)
}
