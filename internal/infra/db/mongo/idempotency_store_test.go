package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"rentdom/internal/app/middleware"
)

func TestDocumentRoundTripKeepsRecord(t *testing.T) {
	at := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	doc := idempotencyDocument{Key: "inquiries.submit:abc", Command: "inquiries.submit", Payload: []byte(`{"id":"1"}`), OccurredAt: at}
	require.Equal(t, middleware.IdempotencyRecord{
		Key:        "inquiries.submit:abc",
		Command:    "inquiries.submit",
		Payload:    []byte(`{"id":"1"}`),
		OccurredAt: at,
	}, doc.toRecord())
}

// Runs against a real server when MONGO_TEST_URI is set.
func TestIdempotencyStoreAgainstMongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := New(ctx, uri, "rentdom_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	defer func() {
		_ = client.DB.Drop(ctx)
		_ = client.Close(ctx)
	}()

	store := NewIdempotencyStore(client.DB, time.Hour)
	require.NoError(t, store.EnsureIndexes(ctx))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	rec := middleware.IdempotencyRecord{Key: "k", Command: "inquiries.submit", Payload: []byte(`{}`), OccurredAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, store.Save(ctx, rec))
	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, rec, got)
}
