package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"maude/internal/storage"
	"maude/internal/storage/storagetest"
)

func TestRegistrationPassesDatabaseOption(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var got Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:    "mongo",
		DSN:     "mongodb://localhost:27017",
		Options: map[string]any{"database": "adverse"},
	})
	require.NoError(t, err)
	assert.Equal(t, Config{URI: "mongodb://localhost:27017", Database: "adverse"}, got)

	repo.Close()
	assert.True(t, closed)
}

func TestNewRepositoryRejectsBadURI(t *testing.T) {
	_, _, err := NewRepository(context.Background(), Config{URI: "localhost:27017"})
	require.Error(t, err)
}

func TestRowDoc(t *testing.T) {
	d := rowDoc([]string{"event_id", "brand_name", "model_number"}, []any{nil, "Pump", nil}, 7)
	assert.Equal(t, bson.D{
		{Key: "event_id", Value: int64(7)},
		{Key: "brand_name", Value: "Pump"},
		{Key: "model_number", Value: nil},
	}, d)
}

// TestStoreConformance runs the shared suite against a live server.
//
//	TEST_MONGO_URI='mongodb://localhost:27017' go test ./internal/storage/mongo
func TestStoreConformance(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("skipping integration test: set TEST_MONGO_URI to run")
	}
	repo, closeFn, err := NewRepository(context.Background(), Config{URI: uri, Database: "maude_test"})
	require.NoError(t, err)
	defer closeFn()
	storagetest.Run(t, repo)
}
