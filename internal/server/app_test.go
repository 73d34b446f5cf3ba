package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetadataBackend = "memory"
	c.SessionBackend = "memory"
	c.ContentBackend = "memory"
	c.QueueBackend = "memory"
	c.ShutdownTimeout = time.Second
	require.NoError(t, c.Validate())
	return c
}

func TestNewApp_UnknownBackend(t *testing.T) {
	ctx := context.Background()

	c := memoryConfig(t)
	c.QueueBackend = "kafka"
	_, err := NewApp(ctx, c, logging.Nop{})
	assert.ErrorIs(t, err, common.ErrNotConfigured)

	c = memoryConfig(t)
	c.MetadataBackend = "sqlite"
	_, err = NewApp(ctx, c, logging.Nop{})
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestNewApp_FSContent(t *testing.T) {
	c := memoryConfig(t)
	c.ContentBackend = "fs"
	c.StoragePath = t.TempDir()

	app, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	assert.NoError(t, app.content.Ping(context.Background()))
	assert.NoError(t, app.Close(context.Background()))
}

func runUntilCancelled(t *testing.T, run func(ctx context.Context) error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("exited too early: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("did not stop after context cancel")
	}
}

func TestApp_RunAPI_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(t), logging.Nop{})
	require.NoError(t, err)
	defer app.Close(context.Background())

	runUntilCancelled(t, app.RunAPI)
}

func TestApp_RunWorker_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(t), logging.Nop{})
	require.NoError(t, err)
	defer app.Close(context.Background())

	runUntilCancelled(t, app.RunWorker)
}
