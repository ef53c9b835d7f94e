// Package collection caches the hero list of one page and keeps it in step
// with the server after create, update and delete.
package collection

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/logger"
)

// ErrClosed is returned by a Load that completes after Close.
var ErrClosed = errors.New("collection closed")

// Lister fetches the full hero list.
type Lister interface {
	ListHeroes(ctx context.Context) ([]domain.Hero, error)
}

// State is the only writer of the cached heroes. Readers get copies of the
// slice.
type State struct {
	lister Lister
	log    *zap.SugaredLogger

	mu      sync.RWMutex
	heroes  []domain.Hero
	loading bool
	loaded  bool
	closed  bool
	err     error
}

func New(lister Lister, log *zap.SugaredLogger) *State {
	return &State{
		lister: lister,
		log:    logger.OrNop(log),
	}
}

// Load replaces the cache with the server list. On failure the previous
// cache is kept and the error is recorded for Err.
func (s *State) Load(ctx context.Context) ([]domain.Hero, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	heroes, err := s.lister.ListHeroes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if s.closed {
		s.log.Debugw("discarding hero list received after close", "error", err)
		return nil, ErrClosed
	}
	if err != nil {
		s.err = err
		s.log.Errorw("failed to load heroes", "error", err, "cached", len(s.heroes))
		return s.snapshot(), err
	}

	s.heroes = append([]domain.Hero(nil), heroes...)
	s.loaded = true
	s.err = nil
	return s.snapshot(), nil
}

// Close marks the owning page as gone. Load completions arriving later leave
// the cache untouched.
func (s *State) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Heroes returns a copy of the cached list.
func (s *State) Heroes() []domain.Hero {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Lookup finds a cached hero by id.
func (s *State) Lookup(id string) (domain.Hero, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.heroes[i], true
	}
	return domain.Hero{}, false
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.heroes)
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Loaded reports whether at least one Load succeeded.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err is the error of the last Load, nil after a successful one.
func (s *State) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ApplyCreated appends a hero returned by a create call.
func (s *State) ApplyCreated(hero domain.Hero) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heroes = append(s.heroes, hero)
}

// ApplyUpdated replaces the cached hero with the same id. An unknown id means
// the cache drifted from the server; it is logged and false is returned.
func (s *State) ApplyUpdated(hero domain.Hero) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(hero.ID)
	if i < 0 {
		s.log.Warnw("updated hero not in cache", "heroID", hero.ID)
		return false
	}
	s.heroes[i] = hero
	return true
}

// ApplyDeleted removes the hero. References held elsewhere (selection, team
// slots) are the caller's to clear.
func (s *State) ApplyDeleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		s.log.Warnw("deleted hero not in cache", "heroID", id)
		return false
	}
	s.heroes = append(s.heroes[:i:i], s.heroes[i+1:]...)
	return true
}

// TotalSkills counts skill entries across all cached heroes.
func (s *State) TotalSkills() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, h := range s.heroes {
		total += len(h.Skills)
	}
	return total
}

func (s *State) index(id string) int {
	for i := range s.heroes {
		if s.heroes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) snapshot() []domain.Hero {
	return append([]domain.Hero(nil), s.heroes...)
}
