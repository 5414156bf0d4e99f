package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"lotto/internal/models"
)

// MemoryStore keeps everything in process. Values are copied in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	players  map[int64]models.Player
	operator models.Operator
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:  make(map[int64]models.Player),
		operator: models.Operator{SubmittedTickets: []models.Ticket{}},
	}
}

func (s *MemoryStore) FindPlayerByName(ctx context.Context, name string) (models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.players {
		if p.Name == name {
			return p.Clone(), nil
		}
	}
	return models.Player{}, errors.Wrapf(ErrNotFound, "player %q", name)
}

func (s *MemoryStore) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return models.Player{}, errors.Wrapf(ErrNotFound, "player %d", id)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, p models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; ok {
		return errors.Wrapf(ErrDuplicate, "player %d", p.ID)
	}
	for _, existing := range s.players {
		if existing.Name == p.Name {
			return errors.Wrapf(ErrDuplicate, "player %q", p.Name)
		}
	}
	s.players[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) SavePlayer(ctx context.Context, p models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.players {
		if id != p.ID && existing.Name == p.Name {
			return errors.Wrapf(ErrDuplicate, "player %q", p.Name)
		}
	}
	s.players[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetOperator(ctx context.Context) (models.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operator.Clone(), nil
}

func (s *MemoryStore) SaveOperator(ctx context.Context, op models.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operator = op.Clone()
	return nil
}
