package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records how a transaction ended. Methods not overridden panic
// through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	txs []*fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func TestUnitOfWorkFlushRunsQueuedWritesInOneTransaction(t *testing.T) {
	db := &fakeBeginner{}
	u := NewUnitOfWork(db)
	var ran []string
	write := func(name string) func(context.Context, pgx.Tx) error {
		return func(context.Context, pgx.Tx) error { ran = append(ran, name); return nil }
	}
	a, b := new(int), new(int)
	u.enqueue(a, write("a1"))
	u.enqueue(b, write("b"))
	u.enqueue(a, write("a2"))
	assert.Equal(t, 2, u.Pending())

	require.NoError(t, u.Flush(context.Background()))
	assert.Equal(t, []string{"a2", "b"}, ran, "a later write for a key replaces the earlier one in place")
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.Zero(t, u.Pending())
}

func TestUnitOfWorkFlushWithNothingQueued(t *testing.T) {
	db := &fakeBeginner{}
	require.NoError(t, NewUnitOfWork(db).Flush(context.Background()))
	assert.Empty(t, db.txs)
}

func TestUnitOfWorkFlushRollsBackOnError(t *testing.T) {
	db := &fakeBeginner{}
	u := NewUnitOfWork(db)
	boom := errors.New("unique violation")
	second := false
	u.enqueue(1, func(context.Context, pgx.Tx) error { return boom })
	u.enqueue(2, func(context.Context, pgx.Tx) error { second = true; return nil })

	err := u.Flush(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, second)
	require.Len(t, db.txs, 1)
	assert.False(t, db.txs[0].committed)
	assert.True(t, db.txs[0].rolledBack)
	assert.Zero(t, u.Pending(), "the queue is cleared after a failed flush")
}

func TestUnitOfWorkDiscard(t *testing.T) {
	u := NewUnitOfWork(&fakeBeginner{})
	u.enqueue("x", func(context.Context, pgx.Tx) error { return nil })
	u.enqueue("y", func(context.Context, pgx.Tx) error { return nil })
	u.discard("x")
	assert.Equal(t, 1, u.Pending())
}

func TestUnitOfWorkBeginError(t *testing.T) {
	boom := errors.New("pool closed")
	u := NewUnitOfWork(&fakeBeginner{err: boom})
	u.enqueue("x", func(context.Context, pgx.Tx) error { return nil })
	assert.ErrorIs(t, u.Flush(context.Background()), boom)
}

func TestUnitOfWorkContext(t *testing.T) {
	_, ok := UnitOfWorkFrom(context.Background())
	assert.False(t, ok)

	u := NewUnitOfWork(&fakeBeginner{})
	got, ok := UnitOfWorkFrom(WithUnitOfWork(context.Background(), u))
	require.True(t, ok)
	assert.Same(t, u, got)
}
