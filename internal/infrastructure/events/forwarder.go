package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
)

// Envelope is the broker message for a page lifecycle event.
type Envelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Action     string    `json:"action"`
	PageID     int64     `json:"page_id"`
	IsNew      bool      `json:"is_new"`
	Title      string    `json:"title,omitempty"`
	Alias      string    `json:"alias,omitempty"`
	Language   string    `json:"language,omitempty"`
	Published  bool      `json:"published"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends a JSON body with a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// Forwarder relays committed page events (post_save, post_delete) to a broker.
// Broker failures are logged, never returned, so a broker outage does not
// fail the write that produced the event.
type Forwarder struct {
	Pub    Publisher
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewForwarder(pub Publisher, logger *logrus.Logger) *Forwarder {
	return &Forwarder{Pub: pub, Logger: logger, Now: time.Now}
}

// Register subscribes the forwarder to the page post_* events on bus.
func (f *Forwarder) Register(bus *Bus, prefix string) {
	bus.Subscribe(f.Handle, prefix+"."+string(event.PostSave), prefix+"."+string(event.PostDelete))
}

// Handle publishes the envelope once the event's write is committed. Inside a
// batch the page has no id yet (new pages) or still has it (deletes), so the
// deleted id is taken now and the saved id after the flush.
func (f *Forwarder) Handle(ctx context.Context, eventType string, ev any) error {
	le, ok := ev.(*event.LifecycleEvent[*entity.Page])
	if !ok || le.Entity == nil {
		return nil
	}
	p := le.Entity
	deletedID := p.DeletedID
	if deletedID == 0 {
		deletedID = p.ID
	}
	event.AfterCommit(ctx, func(ctx context.Context) {
		id := p.ID
		if le.Action == event.PostDelete {
			id = deletedID
		}
		f.publish(ctx, eventType, le, id)
	})
	return nil
}

func (f *Forwarder) publish(ctx context.Context, eventType string, le *event.LifecycleEvent[*entity.Page], id int64) {
	p := le.Entity
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Action:     string(le.Action),
		PageID:     id,
		IsNew:      le.IsNew,
		Title:      p.Title,
		Alias:      p.Alias,
		Language:   p.Language,
		Published:  p.IsPublished,
		OccurredAt: f.Now().UTC(),
	}
	if err := f.Pub.Publish(ctx, eventType, env); err != nil && f.Logger != nil {
		f.Logger.WithError(err).WithField("event_type", eventType).WithField("page_id", id).Warn("publish lifecycle event failed")
	}
}
