package event

import (
	"context"
	"sync"
)

// CommitQueue holds listener work that must wait until the writes queued so
// far in a batch are committed.
type CommitQueue struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

type commitKey struct{}

// WithCommitQueue opens a batch on ctx. Listeners calling AfterCommit with
// the returned context are deferred to q.
func WithCommitQueue(ctx context.Context, q *CommitQueue) context.Context {
	return context.WithValue(ctx, commitKey{}, q)
}

// AfterCommit runs fn once the caller's writes are committed: at once when
// ctx carries no open batch, otherwise when the batch's next flush succeeds.
// fn receives the context given to Run.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if q, ok := ctx.Value(commitKey{}).(*CommitQueue); ok && q != nil {
		q.mu.Lock()
		q.fns = append(q.fns, fn)
		q.mu.Unlock()
		return
	}
	fn(ctx)
}

// Run executes and clears the deferred work in the order it was queued.
func (q *CommitQueue) Run(ctx context.Context) {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

// Discard drops the deferred work; its writes never committed.
func (q *CommitQueue) Discard() {
	q.mu.Lock()
	q.fns = nil
	q.mu.Unlock()
}

// Len reports how much work is deferred.
func (q *CommitQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}
