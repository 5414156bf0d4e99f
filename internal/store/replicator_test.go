package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto/internal/models"
)

// blockingStore holds every write until release is closed.
type blockingStore struct {
	*MemoryStore
	release chan struct{}
}

func (s *blockingStore) SavePlayer(ctx context.Context, p models.Player) error {
	<-s.release
	return s.MemoryStore.SavePlayer(ctx, p)
}

type failingStore struct {
	*MemoryStore
	mu    sync.Mutex
	calls int
}

func (s *failingStore) SavePlayer(ctx context.Context, p models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("connection refused")
}

func TestReplicator(t *testing.T) {
	ctx := context.Background()

	t.Run("writes in order and drains on close", func(t *testing.T) {
		st := NewMemoryStore()
		r := NewReplicator(st, 16, time.Second)

		p := models.Player{ID: 1, Name: "alice", Balance: 10000}
		for _, balance := range []int64{9500, 9000, 14000} {
			p.Balance = balance
			require.True(t, r.SavePlayer(p))
		}
		require.True(t, r.SaveOperator(models.Operator{Balance: 1000}))
		r.Close()

		got, err := st.GetPlayer(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(14000), got.Balance)

		op, err := st.GetOperator(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), op.Balance)
	})

	t.Run("snapshot is copied at enqueue", func(t *testing.T) {
		st := NewMemoryStore()
		r := NewReplicator(st, 4, time.Second)

		p := models.Player{ID: 2, Name: "bob", Tickets: []models.Ticket{{ID: 1, Numbers: []int{1, 2, 3, 4, 5}}}}
		r.SavePlayer(p)
		p.Tickets[0].Numbers[0] = 39
		r.Close()

		got, err := st.GetPlayer(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Tickets[0].Numbers[0])
	})

	t.Run("full queue drops without blocking", func(t *testing.T) {
		st := &blockingStore{MemoryStore: NewMemoryStore(), release: make(chan struct{})}
		r := NewReplicator(st, 1, time.Second)

		accepted := 0
		for i := 0; i < 10; i++ {
			if r.SavePlayer(models.Player{ID: int64(i + 1), Name: "p"}) {
				accepted++
			}
		}
		// One in flight, one queued.
		assert.LessOrEqual(t, accepted, 2)
		close(st.release)
		r.Close()
	})

	t.Run("player and operator share a slot", func(t *testing.T) {
		st := &blockingStore{MemoryStore: NewMemoryStore(), release: make(chan struct{})}
		r := NewReplicator(st, 1, time.Second)

		// Occupy the worker, then fill the single queue slot with a pair.
		require.True(t, r.SavePlayer(models.Player{ID: 1, Name: "first"}))
		require.Eventually(t, func() bool { return len(r.jobs) == 0 }, time.Second, time.Millisecond)
		require.True(t, r.Save(models.Player{ID: 2, Name: "bob", Balance: 9000}, models.Operator{Balance: 1000}))
		assert.False(t, r.Save(models.Player{ID: 2, Name: "bob", Balance: 8500}, models.Operator{Balance: 1500}))

		close(st.release)
		r.Close()

		p, err := st.GetPlayer(ctx, 2)
		require.NoError(t, err)
		op, err := st.GetOperator(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), p.Balance+op.Balance)
	})

	t.Run("write errors are swallowed", func(t *testing.T) {
		st := &failingStore{MemoryStore: NewMemoryStore()}
		r := NewReplicator(st, 4, time.Second)
		r.SavePlayer(models.Player{ID: 1, Name: "alice"})
		r.Close()

		assert.Equal(t, 1, st.calls)
	})

	t.Run("closed replicator drops", func(t *testing.T) {
		r := NewReplicator(NewMemoryStore(), 4, time.Second)
		r.Close()
		r.Close()
		assert.False(t, r.SaveOperator(models.Operator{}))
	})
}
