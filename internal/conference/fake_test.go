package conference_test

import (
	"context"
	"sync"

	"github.com/qrave1/RoomMeet/internal/conference"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]*fakeCall
	order []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]*fakeCall)}
}

func (b *fakeBackend) Call(callType, id string) conference.CallHandle {
	return b.call(callType, id)
}

func (b *fakeBackend) call(callType, id string) *fakeCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.calls[id]; ok {
		return c
	}

	c := newFakeCall(callType, id)
	b.calls[id] = c
	b.order = append(b.order, id)

	return c
}

func (b *fakeBackend) handles() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.order)
}

type fakeCall struct {
	id  string
	typ string

	mu   sync.Mutex
	info conference.CallInfo

	created []conference.CallData
	updates [][]string
	joins   int
	leaves  int
	ends    int

	getOrCreateFn func(ctx context.Context, data conference.CallData) error
	updateErr     error
	joinErr       error
	leaveErr      error
	endErr        error
	queryFn       func(ctx context.Context) ([]conference.CallMember, error)

	subs map[int]chan conference.CallEvent
	next int
}

func newFakeCall(callType, id string) *fakeCall {
	return &fakeCall{
		id:   id,
		typ:  callType,
		info: conference.CallInfo{ID: id, Type: callType},
		subs: make(map[int]chan conference.CallEvent),
	}
}

func (c *fakeCall) ID() string   { return c.id }
func (c *fakeCall) Type() string { return c.typ }

func (c *fakeCall) Info() conference.CallInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.info
}

func (c *fakeCall) setCreator(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.info.CreatedBy = userID
}

func (c *fakeCall) GetOrCreate(ctx context.Context, data conference.CallData) (conference.CallInfo, error) {
	c.mu.Lock()
	c.created = append(c.created, data)
	fn := c.getOrCreateFn
	c.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, data); err != nil {
			return conference.CallInfo{}, err
		}
	}

	return c.Info(), nil
}

func (c *fakeCall) UpdateCallMembers(ctx context.Context, userIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updates = append(c.updates, userIDs)

	return c.updateErr
}

func (c *fakeCall) QueryMembers(ctx context.Context) ([]conference.CallMember, error) {
	c.mu.Lock()
	fn := c.queryFn
	c.mu.Unlock()

	if fn == nil {
		return nil, nil
	}

	return fn(ctx)
}

func (c *fakeCall) Join(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.joins++

	return c.joinErr
}

func (c *fakeCall) Leave(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.leaves++

	return c.leaveErr
}

func (c *fakeCall) EndCall(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ends++

	return c.endErr
}

func (c *fakeCall) Subscribe() (<-chan conference.CallEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++

	ch := make(chan conference.CallEvent, 16)
	c.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *fakeCall) push(ev conference.CallEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subs {
		ch <- ev
	}
}

func (c *fakeCall) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.subs)
}

func (c *fakeCall) counts() (created, updates, joins, leaves, ends int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.created), len(c.updates), c.joins, c.leaves, c.ends
}

// recorder is the router, toast surface and clipboard of a test session.
type recorder struct {
	mu        sync.Mutex
	paths     []string
	toasts    []conference.Notification
	clipboard []string
}

func (r *recorder) Push(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths = append(r.paths, path)
}

func (r *recorder) Notify(n conference.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.toasts = append(r.toasts, n)
}

func (r *recorder) WriteText(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clipboard = append(r.clipboard, text)

	return nil
}

func (r *recorder) navigated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.paths...)
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.toasts))
	for _, n := range r.toasts {
		out = append(out, n.Message)
	}

	return out
}

func newSession(userID string, backend conference.CallBackend, rec *recorder) *conference.Session {
	sess := &conference.Session{
		Backend:  backend,
		Router:   rec,
		Notifier: rec,
		BaseURL:  "https://meet.example.com",
	}

	if userID != "" {
		sess.User = &conference.User{ID: userID, Name: userID}
	}

	return sess
}
