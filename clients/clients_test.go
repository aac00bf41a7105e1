package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emzola/bibliodesk/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientStopsAfterTwoRedirects(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	var cfg config.Config
	cfg.API.Timeout = time.Second
	client := NewHTTPClient(cfg)
	assert.Equal(t, time.Second, client.Timeout)

	_, err := client.Get(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempted redirect")
	assert.Equal(t, 2, hits)
}

func TestNewS3UploaderDisabledWithoutBucket(t *testing.T) {
	uploader, err := NewS3Uploader(context.Background(), config.Config{})
	require.NoError(t, err)
	assert.Nil(t, uploader)
}

func TestNewS3UploaderWithStaticCredentials(t *testing.T) {
	var cfg config.Config
	cfg.S3.Bucket = "exports"
	cfg.S3.Region = "us-east-1"
	cfg.S3.AccessKeyID = "AKIDEXAMPLE"
	cfg.S3.SecretAccessKey = "secret"
	uploader, err := NewS3Uploader(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, uploader)
}
