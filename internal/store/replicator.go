package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/logger"

	"lotto/internal/models"
)

type job struct {
	player   *models.Player
	operator *models.Operator
}

// Replicator pushes snapshots to a Store in the background. Enqueueing never
// blocks: a full queue drops the snapshot. Failed writes are logged and not
// retried.
type Replicator struct {
	store   Store
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

// NewReplicator starts a replicator with a queue of the given depth.
// Each write is bounded by timeout.
func NewReplicator(st Store, buffer int, timeout time.Duration) *Replicator {
	if buffer < 1 {
		buffer = 1
	}
	r := &Replicator{
		store:   st,
		timeout: timeout,
		jobs:    make(chan job, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Replicator) run() {
	defer close(r.done)
	for j := range r.jobs {
		r.write(j)
	}
}

func (r *Replicator) write(j job) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if j.player != nil {
		if err := r.store.SavePlayer(ctx, *j.player); err != nil {
			logger.Errorf("Replicate player %d: %v", j.player.ID, err)
		}
	}
	if j.operator != nil {
		if err := r.store.SaveOperator(ctx, *j.operator); err != nil {
			logger.Errorf("Replicate operator: %v", err)
		}
	}
}

func (r *Replicator) enqueue(j job) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		logger.Warningf("Replicator closed, dropping snapshot")
		return false
	}
	select {
	case r.jobs <- j:
		return true
	default:
		logger.Warningf("Replication queue full, dropping snapshot")
		return false
	}
}

// SavePlayer queues a copy of p. It reports whether the snapshot was queued.
func (r *Replicator) SavePlayer(p models.Player) bool {
	p = p.Clone()
	return r.enqueue(job{player: &p})
}

// SaveOperator queues a copy of op. It reports whether the snapshot was queued.
func (r *Replicator) SaveOperator(op models.Operator) bool {
	op = op.Clone()
	return r.enqueue(job{operator: &op})
}

// Save queues copies of p and op as one job, so both land or neither is
// queued. It reports whether the snapshot was queued.
func (r *Replicator) Save(p models.Player, op models.Operator) bool {
	p, op = p.Clone(), op.Clone()
	return r.enqueue(job{player: &p, operator: &op})
}

// Close stops accepting snapshots and waits for queued ones to be written.
func (r *Replicator) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()
	<-r.done
}
