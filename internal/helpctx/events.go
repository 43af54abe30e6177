package helpctx

// EventKind enumerates the tracker's notification channels.
type EventKind int

const (
	// EventRoleChanged fires when the role takes a new value.
	EventRoleChanged EventKind = iota
	// EventPageChanged fires when the current page takes a new value.
	EventPageChanged
	// EventSectionChanged fires when the current section takes a new value.
	EventSectionChanged
	// EventUpdated fires after every mutation, changed fields or not.
	EventUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventRoleChanged:
		return "roleChanged"
	case EventPageChanged:
		return "pageChanged"
	case EventSectionChanged:
		return "sectionChanged"
	case EventUpdated:
		return "contextUpdated"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers. Value carries the changed field for the
// field-specific kinds and is empty for EventUpdated; Context is always the
// post-mutation snapshot.
type Event struct {
	Kind    EventKind `json:"kind"`
	Value   string    `json:"value,omitempty"`
	Context Context   `json:"context"`
}

// Handler receives tracker events. Handlers run synchronously in
// registration order; a panicking handler is recovered and logged and does
// not stop the remaining handlers.
type Handler func(Event)

// Subscription identifies a registered handler for removal via Off.
type Subscription struct {
	kind EventKind
	id   uint64
}

type subscriber struct {
	id      uint64
	handler Handler
}

func (t *Tracker) emit(kind EventKind, value string, snapshot Context) {
	t.subMu.RLock()
	subs := make([]subscriber, len(t.subscribers[kind]))
	copy(subs, t.subscribers[kind])
	t.subMu.RUnlock()

	event := Event{Kind: kind, Value: value, Context: snapshot}
	for _, sub := range subs {
		t.invoke(kind, sub, event)
	}
}

func (t *Tracker) invoke(kind EventKind, sub subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("handler for %s panicked: %v", kind, r)
		}
	}()
	sub.handler(event)
}

// On registers handler for the given event kind.
func (t *Tracker) On(kind EventKind, handler Handler) Subscription {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.nextSubID++
	sub := Subscription{kind: kind, id: t.nextSubID}
	t.subscribers[kind] = append(t.subscribers[kind], subscriber{id: sub.id, handler: handler})
	return sub
}

// Off removes a previously registered handler. Unknown subscriptions are a
// no-op.
func (t *Tracker) Off(sub Subscription) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	subs := t.subscribers[sub.kind]
	for i, s := range subs {
		if s.id == sub.id {
			t.subscribers[sub.kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
