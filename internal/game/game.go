// Package game implements the round settlement engine: ticket purchase,
// the draw, prize settlement between player and operator, and the two-phase
// round guard. It performs no I/O; callers persist the state it exposes.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"lotto/internal/models"
)

// MaxPlayerID bounds freshly generated player ids.
const MaxPlayerID int64 = 1_000_000_000

// NumberSource produces count distinct numbers in [1, max].
type NumberSource func(count, max int) ([]int, error)

// Option configures a Game.
type Option func(*Game)

// WithRand seeds ticket numbers, draws and player ids from rng.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithNumberSource replaces the generator used for tickets and draws.
func WithNumberSource(src NumberSource) Option {
	return func(g *Game) { g.numbers = src }
}

// Snapshot is a deep copy of a game's state.
type Snapshot struct {
	Player         models.Player       `json:"player"`
	Operator       models.Operator     `json:"operator"`
	Phase          Phase               `json:"phase"`
	DrawnNumbers   []int               `json:"drawnNumbers"`
	TicketsInRound int                 `json:"ticketsInRound"`
	LastResult     *models.RoundResult `json:"lastResult"`
}

// Game owns one player, the operator and the round guard.
// It is not safe for concurrent use.
type Game struct {
	rng     *rand.Rand
	numbers NumberSource

	player         models.Player
	operator       models.Operator
	phase          Phase
	drawn          []int
	ticketsInRound int
	lastResult     *models.RoundResult
}

// New returns a game in its initial state.
func New(opts ...Option) *Game {
	g := &Game{}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.numbers == nil {
		g.numbers = func(count, max int) ([]int, error) {
			return Generate(g.rng, count, max)
		}
	}
	g.Reset()
	return g
}

func initialPlayer() models.Player {
	return models.Player{Balance: StartBalance, Tickets: []models.Ticket{}}
}

func initialOperator() models.Operator {
	return models.Operator{SubmittedTickets: []models.Ticket{}}
}

// Player returns a copy of the bound player.
func (g *Game) Player() models.Player { return g.player.Clone() }

// Operator returns a copy of the operator.
func (g *Game) Operator() models.Operator { return g.operator.Clone() }

// Phase returns the current round phase.
func (g *Game) Phase() Phase { return g.phase }

// Snapshot copies the full game state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Player:         g.Player(),
		Operator:       g.Operator(),
		Phase:          g.phase,
		DrawnNumbers:   append([]int{}, g.drawn...),
		TicketsInRound: g.ticketsInRound,
	}
	if g.lastResult != nil {
		r := g.lastResult.Clone()
		s.LastResult = &r
	}
	return s
}

// NewPlayer builds a player with default balance and a fresh random id.
// It does not bind the player.
func (g *Game) NewPlayer(name string) models.Player {
	p := initialPlayer()
	p.Name = name
	p.ID = g.rng.Int63n(MaxPlayerID) + 1
	return p
}

// Bind replaces the local player with p, as loaded or provisioned by the
// identity resolver. The round phase is left as is.
func (g *Game) Bind(p models.Player) {
	p = p.Clone()
	if p.Tickets == nil {
		p.Tickets = []models.Ticket{}
	}
	g.player = p
}

// LoadOperator replaces the local operator with op.
func (g *Game) LoadOperator(op models.Operator) {
	op = op.Clone()
	if op.SubmittedTickets == nil {
		op.SubmittedTickets = []models.Ticket{}
	}
	g.operator = op
}

// Purchase mints count tickets for the bound player, moves their price from
// the player to the operator and locks the round. On error nothing changes.
func (g *Game) Purchase(count int) ([]models.Ticket, error) {
	if g.player.Name == "" {
		return nil, ErrNameMissing
	}
	if count < 1 {
		return nil, ErrInvalidTicketCount
	}
	next, err := NextPhase(g.phase, EventPurchase)
	if err != nil {
		return nil, err
	}
	if int64(count) > g.player.Balance/TicketPrice {
		return nil, ErrInsufficientBalance
	}
	cost := TicketPrice * int64(count)

	base := len(g.player.Tickets)
	minted := make([]models.Ticket, 0, count)
	for i := 0; i < count; i++ {
		numbers, err := g.numbers(NumbersPerTicket, MaxNumber)
		if err != nil {
			return nil, fmt.Errorf("generate ticket numbers: %w", err)
		}
		minted = append(minted, models.Ticket{
			ID:             base + i + 1,
			Numbers:        numbers,
			IsPlayerTicket: true,
		})
	}

	g.player.Balance -= cost
	g.player.Tickets = append(g.player.Tickets, models.CloneTickets(minted)...)
	g.operator.Balance += cost
	g.operator.SubmittedTickets = append(g.operator.SubmittedTickets, models.CloneTickets(minted)...)
	g.ticketsInRound = count
	g.phase = next
	return minted, nil
}

// Draw closes the round using the ticket count of the last purchase.
func (g *Game) Draw() (models.RoundResult, error) {
	return g.StartDraw(g.ticketsInRound)
}

// StartDraw draws the winning numbers, scores the first ticketsInRound tickets
// of the player in purchase order, settles prizes and reopens the round.
// On error nothing changes.
func (g *Game) StartDraw(ticketsInRound int) (models.RoundResult, error) {
	next, err := NextPhase(g.phase, EventDraw)
	if err != nil {
		return models.RoundResult{}, err
	}
	if ticketsInRound < 1 || len(g.player.Tickets) < ticketsInRound {
		return models.RoundResult{}, ErrInsufficientTickets
	}

	drawn, err := g.numbers(NumbersPerTicket, MaxNumber)
	if err != nil {
		return models.RoundResult{}, fmt.Errorf("generate winning numbers: %w", err)
	}

	result := models.RoundResult{
		DrawnNumbers: drawn,
		Buckets:      make(map[int]int, len(ResultBuckets)),
	}
	for _, hits := range ResultBuckets {
		result.Buckets[hits] = 0
	}

	player, operator := g.player.Balance, g.operator.Balance
	winnings := g.player.TotalWinnings
	for _, t := range g.player.Tickets[:ticketsInRound] {
		hits := CountHits(t.Numbers, drawn)
		prize, skim := Prize(hits)

		player += prize
		winnings += prize
		operator += skim - prize

		if hits == singleHit {
			result.SingleHits++
		} else {
			result.Buckets[hits]++
		}
		result.TotalPrize += prize
	}

	g.player.Balance = player
	g.player.TotalWinnings = winnings
	g.operator.Balance = operator
	result.OperatorProfit = g.operator.Balance - result.TotalPrize

	g.drawn = append([]int(nil), drawn...)
	stored := result.Clone()
	g.lastResult = &stored
	g.phase = next
	return result, nil
}

// Reset restores player, operator, drawn numbers and the guard to their
// defaults. It always succeeds.
func (g *Game) Reset() {
	g.player = initialPlayer()
	g.operator = initialOperator()
	g.phase = PhaseOpen
	g.drawn = []int{}
	g.ticketsInRound = 0
	g.lastResult = nil
}
