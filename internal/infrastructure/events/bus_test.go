package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDispatchesInSubscriptionOrder(t *testing.T) {
	b := NewBus(nil)
	var order []string
	b.Subscribe(func(context.Context, string, any) error { order = append(order, "first"); return nil }, "page.post_save")
	b.Subscribe(func(context.Context, string, any) error { order = append(order, "second"); return nil }, "page.post_save", "page.post_delete")

	assert.True(t, b.HasListeners("page.post_save"))
	assert.False(t, b.HasListeners("page.pre_save"))

	require.NoError(t, b.Dispatch(context.Background(), "page.post_save", nil))
	assert.Equal(t, []string{"first", "second"}, order)

	order = nil
	require.NoError(t, b.Dispatch(context.Background(), "page.post_delete", nil))
	assert.Equal(t, []string{"second"}, order)
}

func TestBusStopsAtFailingListener(t *testing.T) {
	b := NewBus(nil)
	boom := errors.New("veto")
	called := false
	b.Subscribe(func(context.Context, string, any) error { return boom }, "page.pre_save")
	b.Subscribe(func(context.Context, string, any) error { called = true; return nil }, "page.pre_save")

	err := b.Dispatch(context.Background(), "page.pre_save", "payload")
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestBusWithoutListeners(t *testing.T) {
	assert.NoError(t, NewBus(nil).Dispatch(context.Background(), "nothing", nil))
}
