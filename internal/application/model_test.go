package application

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

var (
	alice    = &entity.User{ID: "u-alice", Name: "Alice", Email: "alice@example.com"}
	bob      = &entity.User{ID: "u-bob", Name: "Bob", Email: "bob@example.com"}
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func asUser(u *entity.User) context.Context {
	return WithActor(context.Background(), Actor{User: u, Locale: language.English})
}

func newTestModel(pages *fakePages) (*PageModel, *recordingDispatcher) {
	m := NewPageModel(pages, &fakeHits{}, nil, i18n.Default([]language.Tag{language.English, language.French}), quietLogger(), 20)
	d := &recordingDispatcher{}
	m.Dispatcher = d
	m.Now = func() time.Time { return fixedNow }
	return m, d
}

func TestGetEntity(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 3, Title: "Three"})
	m, _ := newTestModel(pages)
	ctx := context.Background()

	_, ok, err := m.GetEntity(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok, "id 0 is never looked up")

	_, ok, err = m.GetEntity(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	p, ok, err := m.GetEntity(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Three", p.Title)
}

func TestGetEntitiesPassesActorAndLocale(t *testing.T) {
	pages := newFakePages()
	m, _ := newTestModel(pages)
	ctx := WithActor(context.Background(), Actor{User: alice, Locale: language.French})

	_, err := m.GetEntities(ctx, repo.ListArgs{Filter: "est:moi", Limit: 10})
	require.NoError(t, err)
	assert.Same(t, alice, pages.lastArgs.Actor)
	assert.Equal(t, language.French, pages.lastArgs.Locale)
	assert.NotNil(t, pages.lastArgs.Translator)
	assert.Equal(t, "est:moi", pages.lastArgs.Filter)
}

func TestSaveEntityStampsNewEntity(t *testing.T) {
	pages := newFakePages()
	m, d := newTestModel(pages)

	p := &entity.Page{Title: "Launch"}
	_, err := m.SaveEntity(asUser(alice), p, true)
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	require.NotNil(t, p.DateAdded)
	assert.Equal(t, fixedNow, *p.DateAdded)
	assert.Same(t, alice, p.CreatedBy)
	assert.Nil(t, p.DateModified)
	assert.Nil(t, p.ModifiedBy)

	require.Len(t, d.events, 2)
	assert.Equal(t, []event.Action{event.PreSave, event.PostSave}, d.actions())
	assert.True(t, d.events[0].isNew)
	assert.True(t, d.events[1].isNew)
	assert.Same(t, d.events[0].ev, d.events[1].ev.Previous)

	row, ok := pages.committed(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Launch", row.Title)
}

func TestSaveEntityStampsExistingEntity(t *testing.T) {
	added := fixedNow.Add(-time.Hour)
	pages := newFakePages(entity.Page{ID: 5, Title: "Old", AuditFields: entity.AuditFields{DateAdded: &added, CreatedBy: bob}})
	m, d := newTestModel(pages)

	p, _, _ := m.GetEntity(context.Background(), 5)
	p.Title = "New"
	_, err := m.SaveEntity(asUser(alice), p, true)
	require.NoError(t, err)

	assert.Equal(t, added, *p.DateAdded, "created date is left alone")
	assert.Same(t, bob, p.CreatedBy)
	require.NotNil(t, p.DateModified)
	assert.Equal(t, fixedNow, *p.DateModified)
	assert.Same(t, alice, p.ModifiedBy)
	assert.False(t, d.events[0].isNew)
}

func TestSaveEntityAnonymousActorStampsDatesOnly(t *testing.T) {
	m, _ := newTestModel(newFakePages())
	p := &entity.Page{Title: "Anon"}

	_, err := m.SaveEntity(context.Background(), p, true)
	require.NoError(t, err)
	assert.NotNil(t, p.DateAdded)
	assert.Nil(t, p.CreatedBy)
}

func TestSaveEntityUnlockClearsCheckout(t *testing.T) {
	out := fixedNow.Add(-time.Minute)
	pages := newFakePages(entity.Page{ID: 1, CheckoutFields: entity.CheckoutFields{CheckedOut: &out, CheckedOutBy: alice}})
	m, _ := newTestModel(pages)
	ctx := asUser(alice)

	p, _, _ := m.GetEntity(ctx, 1)
	_, err := m.SaveEntity(ctx, p, false)
	require.NoError(t, err)
	assert.NotNil(t, p.CheckedOut, "lock kept without unlock")

	_, err = m.SaveEntity(ctx, p, true)
	require.NoError(t, err)
	assert.Nil(t, p.CheckedOut)
	assert.Nil(t, p.CheckedOutBy)
}

func TestPreSaveListenerErrorVetoesSave(t *testing.T) {
	pages := newFakePages()
	m, d := newTestModel(pages)
	d.failOn, d.err = event.PreSave, errors.New("nope")

	p := &entity.Page{Title: "Vetoed"}
	_, err := m.SaveEntity(asUser(alice), p, true)
	require.ErrorIs(t, err, d.err)
	assert.Zero(t, p.ID)
	assert.Empty(t, pages.rows)
}

func TestLockEntityAndIsLocked(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 1, Title: "Locked"})
	m, _ := newTestModel(pages)

	p, _, _ := m.GetEntity(asUser(alice), 1)
	require.NoError(t, m.LockEntity(asUser(alice), p))

	row, _ := pages.committed(1)
	require.NotNil(t, row.CheckedOut, "lock is committed")
	assert.Equal(t, alice.ID, row.CheckedOutBy.ID)

	assert.False(t, m.IsLocked(asUser(alice), p), "holder sees no lock")
	assert.True(t, m.IsLocked(asUser(bob), p))
	assert.True(t, m.IsLocked(context.Background(), p), "anonymous actor differs from the holder")

	require.NoError(t, m.UnlockEntity(asUser(alice), p))
	assert.False(t, m.IsLocked(asUser(bob), p))
	row, _ = pages.committed(1)
	assert.Nil(t, row.CheckedOut)
}

func TestLockEntityWithoutIdentityDoesNothing(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 1})
	m, _ := newTestModel(pages)

	p, _, _ := m.GetEntity(context.Background(), 1)
	require.NoError(t, m.LockEntity(context.Background(), p))
	assert.Nil(t, p.CheckedOut)
	assert.Zero(t, pages.flushes)
}

func TestIsLockedIgnoresLockWithoutHolder(t *testing.T) {
	m, _ := newTestModel(newFakePages())
	out := fixedNow
	p := &entity.Page{ID: 1, CheckoutFields: entity.CheckoutFields{CheckedOut: &out}}
	assert.False(t, m.IsLocked(asUser(bob), p))
}

func TestUnlockEntityDiscardsUnsavedChanges(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 1, Title: "Saved"})
	m, _ := newTestModel(pages)
	ctx := asUser(alice)

	p, _, _ := m.GetEntity(ctx, 1)
	require.NoError(t, m.LockEntity(ctx, p))

	p.Title = "Scratch"
	require.NoError(t, pages.Persist(ctx, p))

	require.NoError(t, m.UnlockEntity(ctx, p))
	assert.Equal(t, "Saved", p.Title)
	assert.Nil(t, p.CheckedOut)
	row, _ := pages.committed(1)
	assert.Equal(t, "Saved", row.Title)
}

func TestUnlockEntityNeverStored(t *testing.T) {
	pages := newFakePages()
	m, _ := newTestModel(pages)
	ctx := asUser(alice)

	out := fixedNow
	p := &entity.Page{Title: "Draft", CheckoutFields: entity.CheckoutFields{CheckedOut: &out, CheckedOutBy: alice}}
	require.NoError(t, pages.Persist(ctx, p))

	require.NoError(t, m.UnlockEntity(ctx, p))
	assert.Nil(t, p.CheckedOut)
	assert.Nil(t, p.CheckedOutBy)

	require.NoError(t, pages.Flush(ctx))
	assert.Empty(t, pages.rows, "queued write for the draft is dropped")
}

func TestTogglePublishStatus(t *testing.T) {
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)
	tests := []struct {
		name   string
		fields entity.PublishFields
		want   bool
	}{
		{"unpublished becomes published", entity.PublishFields{IsPublished: false}, true},
		{"published becomes unpublished", entity.PublishFields{IsPublished: true}, false},
		{"expired becomes unpublished", entity.PublishFields{IsPublished: true, PublishDown: &past}, false},
		{"pending becomes unpublished", entity.PublishFields{IsPublished: true, PublishUp: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fixedNow
			pages := newFakePages(entity.Page{ID: 1, PublishFields: tt.fields, CheckoutFields: entity.CheckoutFields{CheckedOut: &out, CheckedOutBy: alice}})
			m, d := newTestModel(pages)
			ctx := asUser(alice)

			p, _, _ := m.GetEntity(ctx, 1)
			require.NoError(t, m.TogglePublishStatus(ctx, p))

			assert.Equal(t, tt.want, p.IsPublished)
			require.NotNil(t, p.DateModified)
			assert.Nil(t, p.DateAdded, "toggle is a modification")
			assert.NotNil(t, p.CheckedOut, "toggle keeps the lock")
			assert.Equal(t, []event.Action{event.PreSave, event.PostSave}, d.actions())

			row, _ := pages.committed(1)
			assert.Equal(t, tt.want, row.IsPublished)
		})
	}
}

type note struct{ ID int64 }

func (n *note) GetID() int64 { return n.ID }

func TestTogglePublishStatusRequiresPublishable(t *testing.T) {
	m := &Model[*note]{}
	err := m.TogglePublishStatus(context.Background(), &note{ID: 1})
	assert.ErrorIs(t, err, ErrNotPublishable)
}

// shelvedNote reports a publish status the toggle does not know.
type shelvedNote struct {
	entity.AuditFields
	ID        int64
	status    entity.PublishStatus
	published []bool
	askedAt   time.Time
}

func (n *shelvedNote) GetID() int64                           { return n.ID }
func (n *shelvedNote) GetPublishStatus() entity.PublishStatus { return n.status }
func (n *shelvedNote) SetIsPublished(v bool)                  { n.published = append(n.published, v) }

func (n *shelvedNote) PublishStatusAt(now time.Time) entity.PublishStatus {
	n.askedAt = now
	return n.status
}

type noteStore struct {
	saved   []*shelvedNote
	flushes int
}

func (s *noteStore) FindByID(context.Context, int64) (*shelvedNote, error) {
	return nil, repo.ErrNotFound
}

func (s *noteStore) GetEntities(context.Context, repo.ListArgs) (repo.ListResult[*shelvedNote], error) {
	return repo.ListResult[*shelvedNote]{}, nil
}

func (s *noteStore) SaveEntity(ctx context.Context, n *shelvedNote, flush bool) error {
	s.saved = append(s.saved, n)
	if flush {
		return s.Flush(ctx)
	}
	return nil
}

func (s *noteStore) DeleteEntity(context.Context, *shelvedNote, bool) error { return nil }
func (s *noteStore) Persist(context.Context, *shelvedNote) error            { return nil }
func (s *noteStore) Refresh(context.Context, *shelvedNote) error            { return nil }

func (s *noteStore) Flush(context.Context) error {
	s.flushes++
	return nil
}

type actionLog[T any] struct{ actions []event.Action }

func (d *actionLog[T]) Dispatch(_ context.Context, action event.Action, e T, isNew bool, prev *event.LifecycleEvent[T]) (*event.LifecycleEvent[T], error) {
	d.actions = append(d.actions, action)
	return &event.LifecycleEvent[T]{Action: action, Entity: e, IsNew: isNew, Previous: prev}, nil
}

func TestTogglePublishStatusUnknownStatusKeepsFlag(t *testing.T) {
	store := &noteStore{}
	d := &actionLog[*shelvedNote]{}
	m := NewModel[*shelvedNote](store, store, d, nil, quietLogger())
	m.Now = func() time.Time { return fixedNow }

	n := &shelvedNote{ID: 5, status: entity.PublishStatus("archived")}
	require.NoError(t, m.TogglePublishStatus(asUser(alice), n))

	assert.Empty(t, n.published, "publish flag is not touched")
	require.NotNil(t, n.DateModified)
	assert.Equal(t, fixedNow, *n.DateModified)
	assert.Same(t, alice, n.ModifiedBy)
	assert.Nil(t, n.DateAdded)
	assert.Equal(t, []event.Action{event.PreSave, event.PostSave}, d.actions)
	assert.Equal(t, []*shelvedNote{n}, store.saved)
	assert.Equal(t, 1, store.flushes)
}

func TestTogglePublishStatusUsesModelClock(t *testing.T) {
	store := &noteStore{}
	m := NewModel[*shelvedNote](store, store, nil, nil, quietLogger())
	m.Now = func() time.Time { return fixedNow }

	n := &shelvedNote{ID: 5, status: entity.StatusPublished}
	require.NoError(t, m.TogglePublishStatus(context.Background(), n))
	assert.Equal(t, fixedNow, n.askedAt)
	assert.Equal(t, []bool{false}, n.published)

	pending := fixedNow.Add(time.Hour)
	pages := newFakePages(entity.Page{ID: 1, PublishFields: entity.PublishFields{IsPublished: true, PublishUp: &pending}})
	pm, _ := newTestModel(pages)
	pm.Now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	p, _, _ := pm.GetEntity(context.Background(), 1)
	assert.True(t, pm.CanView(context.Background(), p), "visible once the model clock passes publish up")
}

func TestSaveEntitiesFlushesInBatches(t *testing.T) {
	for _, n := range []int{45, 40, 5} {
		pages := newFakePages()
		m, d := newTestModel(pages)

		batch := make([]*entity.Page, n)
		for i := range batch {
			batch[i] = &entity.Page{Title: "p"}
		}
		require.NoError(t, m.SaveEntities(asUser(alice), batch, false))

		assert.Equal(t, n/20+1, pages.flushes, "n=%d", n)
		assert.Len(t, pages.rows, n)
		assert.Len(t, d.events, 2*n)
		for _, p := range batch {
			assert.NotZero(t, p.ID)
			assert.NotNil(t, p.DateAdded)
		}
	}
}

func TestSaveEntitiesStopsOnFirstError(t *testing.T) {
	pages := newFakePages()
	m, d := newTestModel(pages)
	d.failOn, d.err = event.PostSave, errors.New("listener down")

	batch := []*entity.Page{{Title: "a"}, {Title: "b"}}
	err := m.SaveEntities(asUser(alice), batch, false)
	require.ErrorIs(t, err, d.err)
	assert.Zero(t, pages.flushes)
	assert.Len(t, d.events, 1, "only the first pre_save ran")
}

func TestDeleteEntity(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 7, Title: "Gone"})
	m, d := newTestModel(pages)

	p, _, _ := m.GetEntity(context.Background(), 7)
	require.NoError(t, m.DeleteEntity(context.Background(), p))

	assert.Zero(t, p.ID)
	assert.Equal(t, int64(7), p.DeletedID)
	_, ok := pages.committed(7)
	assert.False(t, ok)

	assert.Equal(t, []event.Action{event.PreDelete, event.PostDelete}, d.actions())
	assert.Equal(t, int64(7), d.events[0].id)
	assert.Same(t, d.events[0].ev, d.events[1].ev.Previous)
}

func TestDeleteEntitiesReportsMissingIDs(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 1}, entity.Page{ID: 2})
	m, d := newTestModel(pages)

	res, err := m.DeleteEntities(context.Background(), []int64{1, 2, 999})
	require.NoError(t, err)

	require.Len(t, res, 3)
	assert.NotNil(t, res[1])
	assert.NotNil(t, res[2])
	v, present := res[999]
	assert.True(t, present)
	assert.Nil(t, v)

	assert.Equal(t, []event.Action{event.PreDelete, event.PostDelete, event.PreDelete, event.PostDelete}, d.actions())
	assert.Equal(t, int64(1), d.events[0].id)
	assert.Equal(t, int64(2), d.events[2].id)
	assert.Empty(t, pages.rows)
}

func TestDeleteEntitiesFlushesInBatches(t *testing.T) {
	seed := make([]entity.Page, 45)
	ids := make([]int64, 45)
	for i := range seed {
		seed[i] = entity.Page{ID: int64(i + 1)}
		ids[i] = int64(i + 1)
	}
	pages := newFakePages(seed...)
	m, _ := newTestModel(pages)

	res, err := m.DeleteEntities(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, res, 45)
	assert.Equal(t, 3, pages.flushes)
	assert.Empty(t, pages.rows)
}

func TestCreateForm(t *testing.T) {
	m := &Model[*entity.Page]{}
	_, err := m.CreateForm(&entity.Page{}, "/save", nil)
	assert.ErrorIs(t, err, ErrFormNotFound)

	pm, _ := newTestModel(newFakePages())
	form, err := pm.CreateForm(&entity.Page{ID: 4, Title: "T"}, "/api/pages/4", FormOptions{"templates": []string{"default", "blank"}})
	require.NoError(t, err)
	assert.Equal(t, "PUT", form.Method)
	assert.Equal(t, "/api/pages/4", form.Action)
	require.Len(t, form.Fields, 10)
	assert.Equal(t, "T", form.Fields[0].Value)
	assert.Equal(t, []string{"default", "blank"}, form.Fields[3].Choices)

	form, err = pm.CreateForm(&entity.Page{}, "/api/pages", nil)
	require.NoError(t, err)
	assert.Equal(t, "POST", form.Method)
}

func TestGetUserContactSubject(t *testing.T) {
	m, _ := newTestModel(newFakePages())
	p := &entity.Page{ID: 7, Title: "Spring"}

	en := asUser(alice)
	fr := WithActor(context.Background(), Actor{User: alice, Locale: language.French})

	assert.Equal(t, "Locked: Spring (#7)", m.GetUserContactSubject(en, "locked", p))
	assert.Equal(t, "Regarding: Spring (#7)", m.GetUserContactSubject(en, "anything", p))
	assert.Equal(t, "Concernant : Spring (n°7)", m.GetUserContactSubject(fr, "", p))

	m.NameGetter = func(p *entity.Page) string { return p.Alias }
	p.Alias = "spring"
	assert.Equal(t, "Locked: spring (#7)", m.GetUserContactSubject(en, "locked", p))
}

func TestGetEntityBySlugs(t *testing.T) {
	pages := newFakePages(entity.Page{ID: 7, Alias: "spring"})
	m, _ := newTestModel(pages)
	ctx := context.Background()

	tests := []struct {
		slug1, slug2, slug3 string
		found               bool
	}{
		{"7:spring", "", "", true},
		{"en", "7:spring", "", true},
		{"en", "promo", "7:spring", true},
		{"7:spring", "", "999:x", false},
		{"7", "", "", false},
		{"7:a:b", "", "", false},
		{"abc:spring", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		p, ok, err := m.GetEntityBySlugs(ctx, tt.slug1, tt.slug2, tt.slug3)
		require.NoError(t, err)
		assert.Equal(t, tt.found, ok, "%q %q %q", tt.slug1, tt.slug2, tt.slug3)
		if tt.found {
			assert.Equal(t, int64(7), p.ID)
		}
	}
}

func TestBusDispatcher(t *testing.T) {
	ctx := context.Background()
	p := &entity.Page{ID: 1}

	noBus := NewBusDispatcher[*entity.Page](nil, "page")
	ev, err := noBus.Dispatch(ctx, event.PreSave, p, false, nil)
	require.NoError(t, err)
	assert.Nil(t, ev)

	bus := &fakeBus{listening: map[string]bool{"page.post_save": true}}
	d := NewBusDispatcher[*entity.Page](bus, "page")

	ev, err = d.Dispatch(ctx, event.PreSave, p, true, nil)
	require.NoError(t, err)
	assert.Nil(t, ev, "no pre_save listeners")

	ev, err = d.Dispatch(ctx, event.PostSave, p, true, nil)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "page.post_save", ev.Type)
	assert.Same(t, p, ev.Entity)
	assert.Equal(t, []string{"page.post_save"}, bus.seen)

	boom := errors.New("boom")
	bus.handle = func(context.Context, string, any) error { return boom }
	_, err = d.Dispatch(ctx, event.PostSave, p, true, nil)
	assert.ErrorIs(t, err, boom)
}

func TestActorFromContextDefaultsToAnonymousEnglish(t *testing.T) {
	a := ActorFromContext(context.Background())
	assert.False(t, a.HasIdentity())
	assert.Equal(t, language.English, a.Locale)

	a = ActorFromContext(asUser(alice))
	assert.True(t, a.HasIdentity())
}
