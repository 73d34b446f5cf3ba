package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// Pinger is anything whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the outcome of one probe round.
type Health struct {
	OK       bool
	Services map[string]bool
}

// Stats are global counters.
type Stats struct {
	Users     int64
	Files     int64
	Timestamp time.Time
}

// SystemService reports liveness of the backing stores and global counts.
type SystemService struct {
	repomanager  repomanager.RepositoryManager
	probes       map[string]Pinger
	probeTimeout time.Duration
	logger       logging.Logger
}

// NewSystemService builds the service. probes maps a service name, as shown
// in health reports, to its client.
func NewSystemService(m repomanager.RepositoryManager, probes map[string]Pinger, logger logging.Logger) *SystemService {
	return &SystemService{
		repomanager:  m,
		probes:       probes,
		probeTimeout: 2 * time.Second,
		logger:       logger.With("component", "system_service"),
	}
}

// Health pings every store concurrently.
func (s *SystemService) Health(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	var mu sync.Mutex
	h := Health{OK: true, Services: make(map[string]bool, len(s.probes))}

	g, gctx := errgroup.WithContext(ctx)
	for name, p := range s.probes {
		g.Go(func() error {
			err := p.Ping(gctx)
			if err != nil {
				s.logger.Warn(gctx, "health probe failed", "service", name, "error", err)
			}
			mu.Lock()
			h.Services[name] = err == nil
			if err != nil {
				h.OK = false
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return h
}

// Stats returns the number of users and files.
func (s *SystemService) Stats(ctx context.Context) (*Stats, error) {
	users, files, err := s.repomanager.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting: %v: %w", err, common.ErrorInternal)
	}
	return &Stats{Users: users, Files: files, Timestamp: time.Now().UTC()}, nil
}
