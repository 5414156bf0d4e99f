package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/logger"

	"lotto/internal/game"
	"lotto/internal/metrics"
	"lotto/internal/models"
	"lotto/internal/notify"
	"lotto/internal/store"
)

// ErrStoreUnavailable marks a persistence failure during identity resolution.
// The session is left unchanged.
var ErrStoreUnavailable = errors.New("player store unavailable")

// LotterySession holds the engine for a single user/tenant.
type LotterySession struct {
	mu           sync.Mutex
	game         *game.Game
	lastActivity time.Time
}

// LotteryService manages one engine per session.
type LotteryService struct {
	mu       sync.RWMutex
	sessions map[string]*LotterySession // Key: tenantID

	store      store.Store
	replicator *store.Replicator
	notifier   notify.Notifier
	newRand    func() *rand.Rand
	now        func() time.Time
}

// Option configures a LotteryService.
type Option func(*LotteryService)

// WithNotifier sets where jackpot notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *LotteryService) { s.notifier = n }
}

// WithRandFactory sets how each new session seeds its engine.
func WithRandFactory(f func() *rand.Rand) Option {
	return func(s *LotteryService) { s.newRand = f }
}

// WithClock overrides time.Now for session bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *LotteryService) { s.now = now }
}

// NewLotteryService creates and initializes a new LotteryService.
func NewLotteryService(st store.Store, rep *store.Replicator, opts ...Option) *LotteryService {
	s := &LotteryService{
		sessions:   make(map[string]*LotterySession),
		store:      st,
		replicator: rep,
		notifier:   notify.Nop{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newRand == nil {
		s.newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return s
}

// getSession returns a session for a tenant, creating one if it doesn't exist.
// A new session starts from the stored operator.
func (s *LotteryService) getSession(ctx context.Context, tenantID string) *LotterySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[tenantID]
	if !exists {
		g := game.New(game.WithRand(s.newRand()))
		if op, err := s.store.GetOperator(ctx); err != nil {
			logger.Errorf("Load operator for session %s: %v", tenantID, err)
		} else {
			g.LoadOperator(op)
		}
		session = &LotterySession{game: g}
		s.sessions[tenantID] = session
		logger.Infof("Created session for tenant: %s", tenantID)
	}
	session.lastActivity = s.now()
	return session
}

// replicate pushes the session state to the store. Nothing is pushed until an
// identity is bound.
func (s *LotteryService) replicate(g *game.Game) {
	p := g.Player()
	if p.Name == "" {
		return
	}
	s.replicator.Save(p, g.Operator())
}

// ResolveIdentity binds the player called name to the session, creating and
// storing a new player when none exists. Store failures leave the session
// unchanged and are reported as ErrStoreUnavailable. While a round is locked
// only the bound name resolves; any other name gets game.ErrRoundLocked.
func (s *LotteryService) ResolveIdentity(ctx context.Context, tenantID, name string) (models.Player, error) {
	session := s.getSession(ctx, tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()
	g := session.game

	if name == "" {
		return g.Player(), game.ErrNameMissing
	}
	// A locked round belongs to the bound player until it is drawn.
	if g.Phase() == game.PhaseLocked {
		if cur := g.Player(); cur.Name == name {
			return cur, nil
		}
		return g.Player(), fmt.Errorf("switch player to %q: %w", name, game.ErrRoundLocked)
	}

	p, err := s.store.FindPlayerByName(ctx, name)
	switch {
	case err == nil:
		g.Bind(p)
		logger.Infof("Tenant %s resumed player %d (%s)", tenantID, p.ID, p.Name)
		return g.Player(), nil
	case !errors.Is(err, store.ErrNotFound):
		logger.Errorf("Resolve player %q: %v", name, err)
		return g.Player(), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	p = g.NewPlayer(name)
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		logger.Errorf("Create player %q: %v", name, err)
		return g.Player(), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	g.Bind(p)
	logger.Infof("Tenant %s created player %d (%s)", tenantID, p.ID, p.Name)
	return g.Player(), nil
}

// BuyTickets purchases count tickets for the session's player.
func (s *LotteryService) BuyTickets(ctx context.Context, tenantID string, count int) ([]models.Ticket, error) {
	session := s.getSession(ctx, tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	tickets, err := session.game.Purchase(count)
	if err != nil {
		metrics.RecordPurchase(ErrorCode(err), 0)
		logger.Infof("Tenant %s purchase of %d rejected: %v", tenantID, count, err)
		return nil, err
	}
	metrics.RecordPurchase("success", len(tickets))
	s.replicate(session.game)
	return tickets, nil
}

// Draw closes the session's round.
func (s *LotteryService) Draw(ctx context.Context, tenantID string) (models.RoundResult, error) {
	session := s.getSession(ctx, tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	start := time.Now()
	result, err := session.game.Draw()
	if err != nil {
		metrics.RecordDraw(ErrorCode(err), nil, 0, 0, start)
		logger.Infof("Tenant %s draw rejected: %v", tenantID, err)
		return models.RoundResult{}, err
	}
	metrics.RecordDraw("success", result.Buckets, result.SingleHits, result.TotalPrize, start)
	s.replicate(session.game)

	if game.IsJackpot(result.Buckets) {
		p := session.game.Player()
		text := fmt.Sprintf("Jackpot! %s hit all five numbers %v and won %d coins this round.",
			p.Name, result.DrawnNumbers, result.TotalPrize)
		go s.notifier.Notify(text)
	}
	return result, nil
}

// Reset restores the session to its initial state.
func (s *LotteryService) Reset(ctx context.Context, tenantID string) game.Snapshot {
	session := s.getSession(ctx, tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()

	session.game.Reset()
	logger.Infof("Reset session for tenant: %s", tenantID)
	return session.game.Snapshot()
}

// Snapshot returns the session state.
func (s *LotteryService) Snapshot(ctx context.Context, tenantID string) game.Snapshot {
	session := s.getSession(ctx, tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.game.Snapshot()
}

// ListPlayers returns every stored player.
func (s *LotteryService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return s.store.ListPlayers(ctx)
}

// Operator returns the stored operator.
func (s *LotteryService) Operator(ctx context.Context) (models.Operator, error) {
	return s.store.GetOperator(ctx)
}

// CleanUpInactiveSessions removes sessions idle for longer than ttl and
// returns how many were removed.
func (s *LotteryService) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for tenantID, session := range s.sessions {
		if now.Sub(session.lastActivity) > ttl {
			logger.Infof("Expired session for tenant: %s", tenantID)
			delete(s.sessions, tenantID)
			removed++
		}
	}
	return removed
}

// ClearSession removes all data associated with a specific tenant.
func (s *LotteryService) ClearSession(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tenantID)
	logger.Infof("Cleared session for tenant: %s", tenantID)
}

// SessionCount reports how many sessions are live.
func (s *LotteryService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ErrorCode maps an error to a stable machine-readable code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrNameMissing):
		return "name_missing"
	case errors.Is(err, game.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, game.ErrRoundLocked):
		return "round_locked"
	case errors.Is(err, game.ErrInvalidTicketCount):
		return "invalid_ticket_count"
	case errors.Is(err, game.ErrRoundOpen):
		return "round_open"
	case errors.Is(err, game.ErrInsufficientTickets):
		return "insufficient_tickets"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "internal_error"
}
