package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-landing-pages/pkg/metrics"
)

// Beginner starts a transaction; *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pendingOp struct {
	key any
	run func(ctx context.Context, tx pgx.Tx) error
}

// UnitOfWork queues writes and commits them together on Flush. One unit of
// work belongs to one request; stores find it through the context.
type UnitOfWork struct {
	db      Beginner
	mu      sync.Mutex
	pending []pendingOp
}

func NewUnitOfWork(db Beginner) *UnitOfWork {
	return &UnitOfWork{db: db}
}

type uowKey struct{}

// WithUnitOfWork attaches u to ctx.
func WithUnitOfWork(ctx context.Context, u *UnitOfWork) context.Context {
	return context.WithValue(ctx, uowKey{}, u)
}

// UnitOfWorkFrom returns the unit of work attached to ctx, if any.
func UnitOfWorkFrom(ctx context.Context) (*UnitOfWork, bool) {
	u, ok := ctx.Value(uowKey{}).(*UnitOfWork)
	return u, ok && u != nil
}

// enqueue adds run for key. A later write for the same key replaces the
// earlier one in place, so each entity is written once per flush.
func (u *UnitOfWork) enqueue(key any, run func(ctx context.Context, tx pgx.Tx) error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.pending {
		if u.pending[i].key == key {
			u.pending[i].run = run
			return
		}
	}
	u.pending = append(u.pending, pendingOp{key: key, run: run})
}

// discard drops any queued write for key.
func (u *UnitOfWork) discard(key any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	kept := u.pending[:0]
	for _, op := range u.pending {
		if op.key != key {
			kept = append(kept, op)
		}
	}
	u.pending = kept
}

// Pending reports how many writes are queued.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Flush runs every queued write in one transaction. On error the transaction
// rolls back and the queue is cleared; earlier flushes stay committed.
func (u *UnitOfWork) Flush(ctx context.Context) error {
	u.mu.Lock()
	ops := u.pending
	u.pending = nil
	u.mu.Unlock()
	if len(ops) == 0 {
		return nil
	}

	start := time.Now()
	err := pgx.BeginFunc(ctx, u.db, func(tx pgx.Tx) error {
		for _, op := range ops {
			if err := op.run(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.FlushDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.Flushes.Inc()
	}
	return err
}
