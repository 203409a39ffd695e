// Package event defines the lifecycle events published around entity
// mutations and the bus they travel on.
package event

import "context"

// Action names a lifecycle hook point.
type Action string

const (
	PreSave    Action = "pre_save"
	PostSave   Action = "post_save"
	PreDelete  Action = "pre_delete"
	PostDelete Action = "post_delete"
)

// LifecycleEvent wraps a single entity mutation. Previous links a post_*
// event to the pre_* event dispatched for the same mutation.
type LifecycleEvent[T any] struct {
	Type     string
	Action   Action
	Entity   T
	IsNew    bool
	Previous *LifecycleEvent[T]
}

// Bus is a process-wide event dispatcher.
type Bus interface {
	Dispatch(ctx context.Context, eventType string, ev any) error
	HasListeners(eventType string) bool
}
