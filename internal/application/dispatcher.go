package application

import (
	"context"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
)

// Dispatcher turns a lifecycle action into a published event. It returns nil
// when nothing listens, so a post_* dispatch gets a nil Previous.
type Dispatcher[T any] interface {
	Dispatch(ctx context.Context, action event.Action, e T, isNew bool, prev *event.LifecycleEvent[T]) (*event.LifecycleEvent[T], error)
}

// BusDispatcher publishes events named "<Prefix>.<action>" on Bus.
type BusDispatcher[T any] struct {
	Bus    event.Bus
	Prefix string
}

func NewBusDispatcher[T any](bus event.Bus, prefix string) *BusDispatcher[T] {
	return &BusDispatcher[T]{Bus: bus, Prefix: prefix}
}

// EventType returns the bus name for action.
func (d *BusDispatcher[T]) EventType(action event.Action) string {
	return d.Prefix + "." + string(action)
}

func (d *BusDispatcher[T]) Dispatch(ctx context.Context, action event.Action, e T, isNew bool, prev *event.LifecycleEvent[T]) (*event.LifecycleEvent[T], error) {
	if d.Bus == nil {
		return nil, nil
	}
	name := d.EventType(action)
	if !d.Bus.HasListeners(name) {
		return nil, nil
	}
	ev := &event.LifecycleEvent[T]{
		Type:     name,
		Action:   action,
		Entity:   e,
		IsNew:    isNew,
		Previous: prev,
	}
	if err := d.Bus.Dispatch(ctx, name, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
