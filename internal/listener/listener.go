package listener

import "sync"

// Subscription is a listener registration. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// Source is anything that accepts listeners for events of type E.
type Source[E any] interface {
	Subscribe(fn func(E)) Subscription
}

// List is an ordered set of listeners for events of type E. The zero value
// is ready to use. Listeners are called outside the internal lock, so a
// listener may cancel itself or subscribe others while being notified.
type List[E any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entry[E]
}

type entry[E any] struct {
	id uint64
	fn func(E)
}

// Subscribe adds fn and returns its registration.
func (l *List[E]) Subscribe(fn func(E)) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, entry[E]{id: id, fn: fn})
	return &subscription{cancel: func() { l.remove(id) }}
}

// Fire delivers e to every listener registered at the time of the call, in
// registration order.
func (l *List[E]) Fire(e E) {
	l.mu.Lock()
	snapshot := make([]func(E), len(l.entries))
	for i, en := range l.entries {
		snapshot[i] = en.fn
	}
	l.mu.Unlock()

	for _, fn := range snapshot {
		fn(e)
	}
}

// Len returns the number of registered listeners.
func (l *List[E]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *List[E]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, en := range l.entries {
		if en.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Group collects subscriptions that are cancelled together.
type Group struct {
	mu   sync.Mutex
	subs []Subscription
}

// Add records s for a later Cancel. A nil s is ignored.
func (g *Group) Add(s Subscription) {
	if s == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs = append(g.subs, s)
}

// Cancel cancels every recorded subscription and forgets them.
func (g *Group) Cancel() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
}
