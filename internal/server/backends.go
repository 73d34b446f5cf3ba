package server

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/memory"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/session"
)

const (
	memorySessionSize = 10000
	memoryQueueSize   = 1024
)

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.MetadataBackend {
	case "postgres":
		m, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "mongo":
		m, err := repomanager.OpenMongo(ctx, c.MongoURI, c.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "memory":
		return memory.NewRepositoryManager(), nil
	}
	return nil, fmt.Errorf("metadata backend %q: %w", c.MetadataBackend, common.ErrNotConfigured)
}

func openSessions(ctx context.Context, c *config.Config) (session.Store, error) {
	switch c.SessionBackend {
	case "redis":
		s, err := session.OpenRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return session.NewMemoryStore(memorySessionSize, c.SessionTTL), nil
	}
	return nil, fmt.Errorf("session backend %q: %w", c.SessionBackend, common.ErrNotConfigured)
}

func openContent(ctx context.Context, c *config.Config) (content.Store, error) {
	switch c.ContentBackend {
	case "fs":
		return content.NewFSStore(c.StoragePath), nil
	case "s3":
		s, err := content.OpenS3(ctx, content.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return content.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("content backend %q: %w", c.ContentBackend, common.ErrNotConfigured)
}

func openQueue(ctx context.Context, c *config.Config, logger logging.Logger) (queue.Queue, error) {
	switch c.QueueBackend {
	case "nats":
		q, err := queue.OpenNATS(ctx, queue.NATSOptions{
			URL:        c.NATSURL,
			MaxDeliver: c.QueueMaxDeliver,
			AckWait:    c.QueueAckWait,
		}, logger)
		if err != nil {
			return nil, err
		}
		return q, nil
	case "memory":
		return queue.NewMemoryQueue(memoryQueueSize, c.QueueMaxDeliver, logger), nil
	}
	return nil, fmt.Errorf("queue backend %q: %w", c.QueueBackend, common.ErrNotConfigured)
}
