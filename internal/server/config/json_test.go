package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":  ":8080",
		"endpoint_addr_grpc":  ":9090",
		"metadata_backend":    "mongo",
		"mongo_uri":           "mongodb://db:27017",
		"session_backend":     "memory",
		"session_ttl":         "12h",
		"content_backend":     "s3",
		"s3_bucket":           "bucket",
		"queue_backend":       "memory",
		"queue_ack_wait":      1000000000,
		"worker_concurrency":  4,
		"page_size":           50,
		"max_upload_bytes":    1024,
		"shutdown_timeout":    "5s",
	})
	pathEnv := writeTempJSON(t, dir, "env.json", map[string]any{
		"storage_path": "/srv/files",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, ":9090", cfg.EndpointAddrGRPC)
		assert.Equal(t, "mongo", cfg.MetadataBackend)
		assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
		assert.Equal(t, "memory", cfg.SessionBackend)
		assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "s3", cfg.ContentBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "memory", cfg.QueueBackend)
		assert.Equal(t, time.Second, cfg.QueueAckWait)
		assert.Equal(t, 4, cfg.WorkerConcurrency)
		assert.Equal(t, 50, cfg.PageSize)
		assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathEnv}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "/srv/files", cfg.StoragePath)
		assert.Equal(t, ":5000", cfg.EndpointAddrHTTP)
		assert.Equal(t, 20, cfg.PageSize)
	})

	t.Run("env var names the file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(ConfigEnvVar, pathEnv)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "/srv/files", cfg.StoragePath)
	})

	t.Run("no file is a no-op", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(ConfigEnvVar, "")

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, Config{}, *cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
