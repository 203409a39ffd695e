// Package events is the in-process lifecycle event bus and the listeners that
// forward events to other systems.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/metrics"
)

// Listener handles one event. Returning an error stops dispatch and is
// reported to the dispatcher's caller.
type Listener func(ctx context.Context, eventType string, ev any) error

// Bus dispatches events synchronously to listeners in subscription order.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	Logger    *logrus.Logger
}

func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{listeners: map[string][]Listener{}, Logger: logger}
}

// Subscribe registers l for each of eventTypes.
func (b *Bus) Subscribe(l Listener, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.listeners[t] = append(b.listeners[t], l)
	}
}

func (b *Bus) HasListeners(eventType string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType]) > 0
}

func (b *Bus) Dispatch(ctx context.Context, eventType string, ev any) error {
	b.mu.RLock()
	ls := append([]Listener(nil), b.listeners[eventType]...)
	b.mu.RUnlock()

	metrics.LifecycleEvents.WithLabelValues(eventType).Inc()
	for i, l := range ls {
		if err := l(ctx, eventType, ev); err != nil {
			metrics.ListenerErrors.WithLabelValues(eventType).Inc()
			if b.Logger != nil {
				b.Logger.WithError(err).WithField("event_type", eventType).WithField("listener", i).Warn("event listener failed")
			}
			return fmt.Errorf("%s listener %d: %w", eventType, i, err)
		}
	}
	return nil
}

var _ event.Bus = (*Bus)(nil)
