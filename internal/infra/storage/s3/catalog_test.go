package s3

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseEndpointStripsScheme(t *testing.T) {
	require.Equal(t, "localhost:9000", parseEndpoint("http://localhost:9000"))
	require.Equal(t, "s3.example.com", parseEndpoint("https://s3.example.com/"))
	require.Equal(t, "minio:9000", parseEndpoint("minio:9000"))
}

func TestNewCatalogSourceValidatesSettings(t *testing.T) {
	_, err := NewCatalogSource("", false, "a", "b", "bucket", "key", nil)
	require.Error(t, err)
	_, err = NewCatalogSource("http://localhost:9000", false, "a", "b", "", "key", nil)
	require.Error(t, err)
	_, err = NewCatalogSource("http://localhost:9000", false, "a", "b", "bucket", "/", nil)
	require.Error(t, err)

	src, err := NewCatalogSource("http://localhost:9000", false, "a", "b", "rentdom", "/data/properties.json", nil)
	require.NoError(t, err)
	require.Equal(t, "data/properties.json", src.key)
}

func TestLoadCatalogFromUnreachableEndpointFails(t *testing.T) {
	src, err := NewCatalogSource("http://127.0.0.1:1", false, "a", "b", "rentdom", "properties.json", nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = src.Load(ctx)
	require.Error(t, err)
}
