package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

// DefaultBatchSize is how many queued writes SaveEntities and DeleteEntities
// accumulate before flushing.
const DefaultBatchSize = 20

// ErrNotPublishable is returned when toggling an entity without a publish status.
var ErrNotPublishable = errors.New("entity has no publish status")

// Model runs the create/read/update/delete lifecycle of one entity family:
// audit stamping, checkout locks, publish toggling and pre/post events.
//
// Batched operations are not atomic: a failure leaves earlier flushes committed.
type Model[T entity.Identifiable] struct {
	Repo       repo.Repository[T]
	Session    repo.Session[T]
	Dispatcher Dispatcher[T]
	Forms      FormBuilder[T]
	Translator i18n.Translator
	Logger     *logrus.Logger

	// NameGetter names an entity in user-facing messages. Defaults to GetName.
	NameGetter func(T) string
	BatchSize  int
	Now        func() time.Time
}

// NewModel wires a model over a repository and its session.
func NewModel[T entity.Identifiable](r repo.Repository[T], s repo.Session[T], d Dispatcher[T], tr i18n.Translator, logger *logrus.Logger) *Model[T] {
	return &Model[T]{
		Repo:       r,
		Session:    s,
		Dispatcher: d,
		Translator: tr,
		Logger:     logger,
		BatchSize:  DefaultBatchSize,
	}
}

func (m *Model[T]) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Model[T]) batchSize() int {
	if m.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return m.BatchSize
}

// GetEntity returns the entity with id. ok is false when id is unset or no
// entity matches.
func (m *Model[T]) GetEntity(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	if id == 0 {
		return zero, false, nil
	}
	var (
		e   T
		err error
	)
	if getter, ok := m.Repo.(repo.EntityGetter[T]); ok {
		e, err = getter.GetEntity(ctx, id)
	} else {
		e, err = m.Repo.FindByID(ctx, id)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// GetEntities lists entities, passing the acting user and locale down so the
// store can filter on them.
func (m *Model[T]) GetEntities(ctx context.Context, args repo.ListArgs) (repo.ListResult[T], error) {
	actor := ActorFromContext(ctx)
	args.Actor = actor.User
	args.Locale = actor.Locale
	args.Translator = m.Translator
	return m.Repo.GetEntities(ctx, args)
}

// LockEntity checks the entity out to the acting user and commits at once.
func (m *Model[T]) LockEntity(ctx context.Context, e T) error {
	l, ok := any(e).(entity.Lockable)
	if !ok {
		return nil
	}
	actor := ActorFromContext(ctx)
	if !actor.HasIdentity() {
		return nil
	}
	now := m.now()
	l.SetCheckedOut(&now)
	l.SetCheckedOutBy(actor.User)
	if err := m.Session.Persist(ctx, e); err != nil {
		return err
	}
	return m.Session.Flush(ctx)
}

// IsLocked reports whether someone other than the acting user holds the lock.
// Stale locks are left alone.
func (m *Model[T]) IsLocked(ctx context.Context, e T) bool {
	l, ok := any(e).(entity.Lockable)
	if !ok || l.GetCheckedOut() == nil {
		return false
	}
	by := l.GetCheckedOutBy()
	if !by.HasIdentity() {
		return false
	}
	actor := ActorFromContext(ctx)
	return actor.User == nil || by.ID != actor.User.ID
}

// UnlockEntity reloads the entity, discarding unsaved changes, then clears
// its lock and commits. An entity that was never stored has nothing to
// reload or commit: its queued writes are dropped and its lock fields cleared.
func (m *Model[T]) UnlockEntity(ctx context.Context, e T) error {
	l, ok := any(e).(entity.Lockable)
	if !ok {
		return nil
	}
	stored := e.GetID() != 0
	if err := m.Session.Refresh(ctx, e); err != nil {
		if stored || !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		l.SetCheckedOut(nil)
		l.SetCheckedOutBy(nil)
		return nil
	}
	l.SetCheckedOut(nil)
	l.SetCheckedOutBy(nil)
	if err := m.Session.Persist(ctx, e); err != nil {
		return err
	}
	return m.Session.Flush(ctx)
}

// SaveEntity stamps, dispatches pre_save, stores and dispatches post_save.
// With unlock set, any checkout lock is released.
func (m *Model[T]) SaveEntity(ctx context.Context, e T, unlock bool) (T, error) {
	if err := m.save(ctx, e, unlock, true); err != nil {
		return e, err
	}
	return e, nil
}

// SaveEntities saves each entity in order with the same events as
// SaveEntity, flushing every BatchSize entities and once at the end.
// Listener work deferred with event.AfterCommit runs after each flush.
func (m *Model[T]) SaveEntities(ctx context.Context, entities []T, unlock bool) error {
	q := &event.CommitQueue{}
	bctx := event.WithCommitQueue(ctx, q)
	size := m.batchSize()
	for k, e := range entities {
		if err := m.save(bctx, e, unlock, false); err != nil {
			q.Discard()
			return err
		}
		if (k+1)%size == 0 {
			if err := m.flushBatch(ctx, q); err != nil {
				return err
			}
		}
	}
	return m.flushBatch(ctx, q)
}

// flushBatch commits the queued writes and then runs the listener work
// waiting on them. Work for a failed flush is dropped with its writes.
func (m *Model[T]) flushBatch(ctx context.Context, q *event.CommitQueue) error {
	if err := m.Session.Flush(ctx); err != nil {
		q.Discard()
		return err
	}
	q.Run(ctx)
	return nil
}

func (m *Model[T]) save(ctx context.Context, e T, unlock, flush bool) error {
	isNew := e.GetID() == 0
	m.SetTimestamps(ctx, e, isNew, unlock)

	pre, err := m.dispatch(ctx, event.PreSave, e, isNew, nil)
	if err != nil {
		return err
	}
	if err := m.Repo.SaveEntity(ctx, e, flush); err != nil {
		return err
	}
	_, err = m.dispatch(ctx, event.PostSave, e, isNew, pre)
	return err
}

// TogglePublishStatus flips the publish flag: unpublished entities become
// published; published, expired and pending ones become unpublished. Other
// statuses are left as they are. The entity is then saved as a modification
// without releasing its lock.
func (m *Model[T]) TogglePublishStatus(ctx context.Context, e T) error {
	p, ok := any(e).(entity.Publishable)
	if !ok {
		return ErrNotPublishable
	}
	status := p.GetPublishStatus()
	if c, ok := any(e).(entity.ClockedPublishable); ok {
		status = c.PublishStatusAt(m.now())
	}
	switch status {
	case entity.StatusUnpublished:
		p.SetIsPublished(true)
	case entity.StatusPublished, entity.StatusExpired, entity.StatusPending:
		p.SetIsPublished(false)
	}

	m.SetTimestamps(ctx, e, false, false)

	pre, err := m.dispatch(ctx, event.PreSave, e, false, nil)
	if err != nil {
		return err
	}
	if err := m.Repo.SaveEntity(ctx, e, true); err != nil {
		return err
	}
	_, err = m.dispatch(ctx, event.PostSave, e, false, pre)
	return err
}

// SetTimestamps stamps created fields on new entities and modified fields on
// existing ones, never both. The acting user is recorded only if it has an
// identity. With unlock set the checkout lock is cleared whoever holds it.
func (m *Model[T]) SetTimestamps(ctx context.Context, e T, isNew, unlock bool) {
	actor := ActorFromContext(ctx)
	if a, ok := any(e).(entity.Auditable); ok {
		now := m.now()
		if isNew {
			a.SetDateAdded(now)
			if actor.HasIdentity() {
				a.SetCreatedBy(actor.User)
			}
		} else {
			a.SetDateModified(now)
			if actor.HasIdentity() {
				a.SetModifiedBy(actor.User)
			}
		}
	}
	if l, ok := any(e).(entity.Lockable); ok && unlock {
		l.SetCheckedOut(nil)
		l.SetCheckedOutBy(nil)
	}
}

// DeleteEntity removes e. The id is captured first, because the store clears
// it, and handed back through DeletedIDSetter for post_delete listeners.
func (m *Model[T]) DeleteEntity(ctx context.Context, e T) error {
	id := e.GetID()
	pre, err := m.dispatch(ctx, event.PreDelete, e, false, nil)
	if err != nil {
		return err
	}
	if err := m.Repo.DeleteEntity(ctx, e, true); err != nil {
		return err
	}
	if s, ok := any(e).(entity.DeletedIDSetter); ok {
		s.SetDeletedID(id)
	}
	_, err = m.dispatch(ctx, event.PostDelete, e, false, pre)
	return err
}

// DeleteEntities deletes the entities with the given ids in order, flushing
// every BatchSize ids and once at the end. The result maps every id to the
// entity it resolved to; ids with no entity map to the zero value. As with
// SaveEntities, deferred listener work runs after each flush.
func (m *Model[T]) DeleteEntities(ctx context.Context, ids []int64) (map[int64]T, error) {
	q := &event.CommitQueue{}
	bctx := event.WithCommitQueue(ctx, q)
	size := m.batchSize()
	out := make(map[int64]T, len(ids))
	for k, id := range ids {
		e, found, err := m.GetEntity(bctx, id)
		if err != nil {
			q.Discard()
			return out, err
		}
		out[id] = e
		if found {
			if err := m.deleteQueued(bctx, e); err != nil {
				q.Discard()
				return out, err
			}
		}
		if (k+1)%size == 0 {
			if err := m.flushBatch(ctx, q); err != nil {
				return out, err
			}
		}
	}
	return out, m.flushBatch(ctx, q)
}

func (m *Model[T]) deleteQueued(ctx context.Context, e T) error {
	pre, err := m.dispatch(ctx, event.PreDelete, e, false, nil)
	if err != nil {
		return err
	}
	if err := m.Repo.DeleteEntity(ctx, e, false); err != nil {
		return err
	}
	_, err = m.dispatch(ctx, event.PostDelete, e, false, pre)
	return err
}

// CreateForm builds the edit form for e. Without a FormBuilder it fails with
// ErrFormNotFound.
func (m *Model[T]) CreateForm(e T, action string, opts FormOptions) (*Form, error) {
	if m.Forms == nil {
		return nil, ErrFormNotFound
	}
	return m.Forms.Build(e, action, opts)
}

func (m *Model[T]) dispatch(ctx context.Context, action event.Action, e T, isNew bool, prev *event.LifecycleEvent[T]) (*event.LifecycleEvent[T], error) {
	if m.Dispatcher == nil {
		return nil, nil
	}
	ev, err := m.Dispatcher.Dispatch(ctx, action, e, isNew, prev)
	if err != nil && m.Logger != nil {
		m.Logger.WithError(err).WithField("action", string(action)).WithField("id", e.GetID()).Warn("lifecycle listener failed")
	}
	return ev, err
}

// GetUserContactSubject builds the localized subject for a message to the
// user responsible for e.
func (m *Model[T]) GetUserContactSubject(ctx context.Context, subject string, e T) string {
	key := i18n.KeyContactRegarding
	if subject == "locked" {
		key = i18n.KeyContactLocked
	}
	params := map[string]string{
		"%entityName%": m.nameOf(e),
		"%entityId%":   strconv.FormatInt(e.GetID(), 10),
	}
	if m.Translator == nil {
		return key
	}
	return m.Translator.Trans(ActorFromContext(ctx).Locale, key, params)
}

func (m *Model[T]) nameOf(e T) string {
	if m.NameGetter != nil {
		return m.NameGetter(e)
	}
	if n, ok := any(e).(entity.Named); ok {
		return n.GetName()
	}
	return ""
}

// GetEntityBySlugs resolves the most specific non-empty slug (slug3, then
// slug2, then slug1) of the form "<id>:<alias>". Any other shape, or an id
// with no entity, resolves to nothing.
func (m *Model[T]) GetEntityBySlugs(ctx context.Context, slug1, slug2, slug3 string) (T, bool, error) {
	var zero T
	idSlug := slug1
	switch {
	case slug3 != "":
		idSlug = slug3
	case slug2 != "":
		idSlug = slug2
	}
	parts := strings.Split(idSlug, ":")
	if len(parts) != 2 {
		return zero, false, nil
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return zero, false, nil
	}
	return m.GetEntity(ctx, id)
}
