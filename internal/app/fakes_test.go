package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"household_reminder_bot/internal/domain/bill"
	"household_reminder_bot/internal/domain/maintenance"
	"household_reminder_bot/internal/domain/notify"
	"household_reminder_bot/internal/domain/task"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// --- gateway fake ---

type fakeGateway struct {
	mu           sync.Mutex
	available    bool
	failSchedule bool
	nextID       int
	scheduled    map[string]notify.Scheduled
	cancelCalls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{available: true, scheduled: make(map[string]notify.Scheduled)}
}

func (g *fakeGateway) Available() bool { return g.available }

func (g *fakeGateway) Schedule(_ context.Context, n notify.Notification) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSchedule {
		return "", errors.New("platform rejected schedule")
	}
	g.nextID++
	id := fmt.Sprintf("n-%d", g.nextID)
	g.scheduled[id] = notify.Scheduled{ID: id, Tag: n.Tag, TriggerAt: n.TriggerAt}
	return id, nil
}

func (g *fakeGateway) Cancel(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls++
	delete(g.scheduled, id)
	return nil
}

func (g *fakeGateway) ListScheduled(_ context.Context) ([]notify.Scheduled, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]notify.Scheduled, 0, len(g.scheduled))
	for _, s := range g.scheduled {
		out = append(out, s)
	}
	return out, nil
}

func (g *fakeGateway) byTag(tag string) []notify.Scheduled {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []notify.Scheduled
	for _, s := range g.scheduled {
		if s.Tag == tag {
			out = append(out, s)
		}
	}
	return out
}

// --- preference store fake ---

type prefsStub struct {
	p   notify.Preferences
	err error
}

func (s *prefsStub) Get(context.Context) (notify.Preferences, error) {
	if s.err != nil {
		return notify.Preferences{}, s.err
	}
	return s.p, nil
}

func (s *prefsStub) Save(_ context.Context, p notify.Preferences) error {
	s.p = p
	return nil
}

// --- repository fakes ---

type taskRepoStub struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*task.Task
}

func newTaskRepoStub() *taskRepoStub {
	return &taskRepoStub{tasks: make(map[int64]*task.Task)}
}

func (r *taskRepoStub) Create(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *taskRepoStub) GetByID(_ context.Context, id int64) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	cp := *t
	return &cp, nil
}

func (r *taskRepoStub) Update(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return errors.New("task not found")
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *taskRepoStub) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *taskRepoStub) ListPending(_ context.Context) ([]*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*task.Task
	for _, t := range r.tasks {
		if t.Status == task.StatusPending {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *taskRepoStub) ListAll(_ context.Context) ([]*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*task.Task
	for _, t := range r.tasks {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

type billRepoStub struct {
	mu     sync.Mutex
	nextID int64
	bills  map[int64]*bill.Bill
}

func newBillRepoStub() *billRepoStub {
	return &billRepoStub{bills: make(map[int64]*bill.Bill)}
}

func (r *billRepoStub) Create(_ context.Context, b *bill.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	cp := *b
	r.bills[b.ID] = &cp
	return nil
}

func (r *billRepoStub) GetByID(_ context.Context, id int64) (*bill.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, errors.New("bill not found")
	}
	cp := *b
	return &cp, nil
}

func (r *billRepoStub) Update(_ context.Context, b *bill.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[b.ID]; !ok {
		return errors.New("bill not found")
	}
	cp := *b
	r.bills[b.ID] = &cp
	return nil
}

func (r *billRepoStub) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bills, id)
	return nil
}

func (r *billRepoStub) ListUnpaid(_ context.Context) ([]*bill.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bill.Bill
	for _, b := range r.bills {
		if b.Status != bill.StatusPaid {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *billRepoStub) ListAll(_ context.Context) ([]*bill.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bill.Bill
	for _, b := range r.bills {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (r *billRepoStub) ResetPaidBefore(_ context.Context, cycleStart time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bills {
		if b.Status == bill.StatusPaid && b.PaidAt.Valid && b.PaidAt.Time.Before(cycleStart) {
			b.Status = bill.StatusPending
			b.PaidAt.Valid = false
			b.PaidAmount.Valid = false
			n++
		}
	}
	return n, nil
}

type maintRepoStub struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*maintenance.Item
	events []*maintenance.Event
}

func newMaintRepoStub() *maintRepoStub {
	return &maintRepoStub{items: make(map[int64]*maintenance.Item)}
}

func (r *maintRepoStub) Create(_ context.Context, item *maintenance.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *maintRepoStub) GetByID(_ context.Context, id int64) (*maintenance.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, errors.New("maintenance item not found")
	}
	cp := *item
	return &cp, nil
}

func (r *maintRepoStub) Update(_ context.Context, item *maintenance.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return errors.New("maintenance item not found")
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *maintRepoStub) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *maintRepoStub) ListAll(_ context.Context) ([]*maintenance.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*maintenance.Item
	for _, item := range r.items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *maintRepoStub) AddEvent(_ context.Context, event *maintenance.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = int64(len(r.events) + 1)
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *maintRepoStub) ListEvents(_ context.Context, itemID int64) ([]*maintenance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*maintenance.Event
	for _, e := range r.events {
		if e.ItemID == itemID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
