package listener

import (
	"sync"
	"weak"
)

// SubscribeWeak registers fn on src on behalf of target while holding target
// only weakly. Once target has been garbage collected the next event cancels
// the registration instead of being delivered.
//
// fn receives the target explicitly and must not capture it, otherwise the
// closure itself keeps target reachable. Method expressions such as
// (*Node).handle are the intended shape.
func SubscribeWeak[T, E any](src Source[E], target *T, fn func(*T, E)) Subscription {
	ref := weak.Make(target)
	w := &weakSubscription{}
	sub := src.Subscribe(func(e E) {
		t := ref.Value()
		if t == nil {
			w.Cancel()
			return
		}
		fn(t, e)
	})
	w.bind(sub)
	return w
}

type weakSubscription struct {
	mu        sync.Mutex
	sub       Subscription
	cancelled bool
}

// bind attaches the underlying registration. An event delivered before bind
// returned may already have cancelled w, in which case sub is cancelled now.
func (w *weakSubscription) bind(sub Subscription) {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		sub.Cancel()
		return
	}
	w.sub = sub
	w.mu.Unlock()
}

func (w *weakSubscription) Cancel() {
	w.mu.Lock()
	w.cancelled = true
	sub := w.sub
	w.sub = nil
	w.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}
