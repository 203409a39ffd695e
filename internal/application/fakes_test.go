package application

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
)

// fakePages keeps committed rows in memory and queues writes until Flush,
// like the Postgres unit of work does.
type fakePages struct {
	mu       sync.Mutex
	rows     map[int64]entity.Page
	nextID   int64
	pending  []*entity.Page
	ops      map[*entity.Page]func()
	flushes  int
	lastArgs repo.ListArgs
	hits     map[int64]int
}

func newFakePages(pages ...entity.Page) *fakePages {
	f := &fakePages{rows: map[int64]entity.Page{}, ops: map[*entity.Page]func(){}, hits: map[int64]int{}}
	for _, p := range pages {
		f.rows[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakePages) enqueue(p *entity.Page, op func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ops[p]; !ok {
		f.pending = append(f.pending, p)
	}
	f.ops[p] = op
}

func (f *fakePages) load(id int64) (*entity.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := row
	return &cp, nil
}

func (f *fakePages) FindByID(_ context.Context, id int64) (*entity.Page, error)  { return f.load(id) }
func (f *fakePages) GetEntity(_ context.Context, id int64) (*entity.Page, error) { return f.load(id) }

func (f *fakePages) GetEntities(_ context.Context, args repo.ListArgs) (repo.ListResult[*entity.Page], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastArgs = args
	out := repo.ListResult[*entity.Page]{Start: args.Start, Limit: args.Limit}
	for _, row := range f.rows {
		cp := row
		out.Items = append(out.Items, &cp)
	}
	out.Total = len(out.Items)
	return out, nil
}

func (f *fakePages) Persist(_ context.Context, p *entity.Page) error {
	f.enqueue(p, func() {
		if p.ID == 0 {
			f.nextID++
			p.ID = f.nextID
		}
		f.rows[p.ID] = *p
	})
	return nil
}

func (f *fakePages) Flush(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	for _, p := range f.pending {
		f.ops[p]()
	}
	f.pending = nil
	f.ops = map[*entity.Page]func(){}
	return nil
}

func (f *fakePages) Refresh(_ context.Context, p *entity.Page) error {
	f.mu.Lock()
	if _, ok := f.ops[p]; ok {
		delete(f.ops, p)
		kept := f.pending[:0]
		for _, q := range f.pending {
			if q != p {
				kept = append(kept, q)
			}
		}
		f.pending = kept
	}
	f.mu.Unlock()
	fresh, err := f.load(p.ID)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func (f *fakePages) SaveEntity(ctx context.Context, p *entity.Page, flush bool) error {
	_ = f.Persist(ctx, p)
	if flush {
		return f.Flush(ctx)
	}
	return nil
}

func (f *fakePages) DeleteEntity(ctx context.Context, p *entity.Page, flush bool) error {
	id := p.ID
	f.enqueue(p, func() {
		delete(f.rows, id)
		p.ID = 0
	})
	if flush {
		return f.Flush(ctx)
	}
	return nil
}

func (f *fakePages) TranslationChildren(_ context.Context, parentID int64) ([]*entity.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Page
	for id := int64(1); id <= f.nextID; id++ {
		row, ok := f.rows[id]
		if ok && row.TranslationParentID != nil && *row.TranslationParentID == parentID {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePages) IncrementHits(_ context.Context, pageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[pageID]++
	return nil
}

func (f *fakePages) committed(id int64) (entity.Page, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	return row, ok
}

type fakeHits struct {
	recorded []*entity.Hit
	visitors int
	since    time.Time
}

func (f *fakeHits) Record(_ context.Context, h *entity.Hit) error {
	f.recorded = append(f.recorded, h)
	return nil
}

func (f *fakeHits) CountVisitors(_ context.Context, since time.Time) (int, error) {
	f.since = since
	return f.visitors, nil
}

type recorded struct {
	action event.Action
	id     int64
	isNew  bool
	ev     *event.LifecycleEvent[*entity.Page]
}

type recordingDispatcher struct {
	events []recorded
	failOn event.Action
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, action event.Action, e *entity.Page, isNew bool, prev *event.LifecycleEvent[*entity.Page]) (*event.LifecycleEvent[*entity.Page], error) {
	if d.err != nil && action == d.failOn {
		return nil, d.err
	}
	ev := &event.LifecycleEvent[*entity.Page]{Type: PageEventPrefix + "." + string(action), Action: action, Entity: e, IsNew: isNew, Previous: prev}
	d.events = append(d.events, recorded{action: action, id: e.ID, isNew: isNew, ev: ev})
	return ev, nil
}

func (d *recordingDispatcher) actions() []event.Action {
	out := make([]event.Action, 0, len(d.events))
	for _, r := range d.events {
		out = append(out, r.action)
	}
	return out
}

// fakeBus records dispatches and lets tests choose who listens.
type fakeBus struct {
	listening map[string]bool
	handle    func(ctx context.Context, eventType string, ev any) error
	seen      []string
}

func (b *fakeBus) HasListeners(t string) bool { return b.listening[t] }

func (b *fakeBus) Dispatch(ctx context.Context, t string, ev any) error {
	b.seen = append(b.seen, t)
	if b.handle != nil {
		return b.handle(ctx, t, ev)
	}
	return nil
}
