// internal/catalog/store.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/models"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

type entry struct {
	agent    *models.Agent
	loadedAt time.Time
}

// Store keeps an immutable snapshot of every agent loaded so far. Readers
// never block; a load publishes a new snapshot.
type Store struct {
	source   Source
	maxAge   time.Duration
	logger   logger.Logger
	snapshot atomic.Pointer[map[string]entry]
	mu       sync.Mutex
}

// NewStore wraps source. A positive maxAge reloads entries older than it on
// access, which keeps live inventory fresh.
func NewStore(source Source, maxAge time.Duration, log logger.Logger) *Store {
	s := &Store{source: source, maxAge: maxAge, logger: log}
	empty := map[string]entry{}
	s.snapshot.Store(&empty)
	return s
}

// Get returns the agent for agentType, loading it on first use.
func (s *Store) Get(ctx context.Context, agentType string) (*models.Agent, error) {
	if e, ok := (*s.snapshot.Load())[agentType]; ok && !s.stale(e) {
		return e.agent, nil
	}
	return s.load(ctx, agentType)
}

// GetActive is Get restricted to active agents.
func (s *Store) GetActive(ctx context.Context, agentType string) (*models.Agent, error) {
	agent, err := s.Get(ctx, agentType)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", ErrAgentNotFound, agentType)
	}
	return agent, nil
}

// List returns summaries of every active agent known to the source.
func (s *Store) List(ctx context.Context) ([]models.AgentSummary, error) {
	types, err := s.source.AgentTypes(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.AgentSummary, 0, len(types))
	for _, typ := range types {
		agent, err := s.Get(ctx, typ)
		if err != nil {
			return nil, err
		}
		if agent.IsActive {
			summaries = append(summaries, agent.Summary())
		}
	}
	return summaries, nil
}

// Reload drops every snapshot entry and loads all agents again. Agents that
// fail to load are left out and the first error is returned.
func (s *Store) Reload(ctx context.Context) error {
	types, err := s.source.AgentTypes(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]entry, len(types))
	var firstErr error
	for _, typ := range types {
		agent, err := s.source.Load(ctx, typ)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("agent reload failed", map[string]interface{}{
				"agentType": typ,
				"error":     err.Error(),
			})
			continue
		}
		next[typ] = entry{agent: agent, loadedAt: time.Now()}
	}

	s.mu.Lock()
	s.snapshot.Store(&next)
	s.mu.Unlock()

	s.logger.Info("catalog reloaded", map[string]interface{}{"agents": len(next)})
	return firstErr
}

func (s *Store) stale(e entry) bool {
	return s.maxAge > 0 && time.Since(e.loadedAt) > s.maxAge
}

func (s *Store) load(ctx context.Context, agentType string) (*models.Agent, error) {
	agent, err := s.source.Load(ctx, agentType)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := *s.snapshot.Load()
	next := make(map[string]entry, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[agentType] = entry{agent: agent, loadedAt: time.Now()}
	s.snapshot.Store(&next)
	return agent, nil
}

// Watch reloads the store whenever a file under dir changes. It blocks
// until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := s.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("catalog reload incomplete", map[string]interface{}{"error": err.Error()})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("catalog watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}
