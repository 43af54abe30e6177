package helpctx

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"visionhelp/internal/logging"
	"visionhelp/internal/state"
)

// Tracker owns the help context. All mutation goes through its setters; each
// setter refreshes the snapshot timestamp and notifies subscribers. The one
// externally triggered mutation is a role change observed on the role store
// (another engine process writing the sticky role), delivered through the
// store watch.
type Tracker struct {
	mu  sync.Mutex
	ctx Context

	roleStore    state.Store
	sessionStore state.Store
	roleWatch    io.Closer
	logger       logging.Logger

	subMu       sync.RWMutex
	subscribers map[EventKind][]subscriber
	nextSubID   uint64
}

// Option customizes tracker construction.
type Option func(*trackerOptions)

type trackerOptions struct {
	roleStore    state.Store
	sessionStore state.Store
	location     string
	logger       logging.Logger
}

// WithRoleStore sets the durable store holding the sticky role selection.
func WithRoleStore(store state.Store) Option {
	return func(o *trackerOptions) { o.roleStore = store }
}

// WithSessionStore sets the store holding the session identifier.
func WithSessionStore(store state.Store) Option {
	return func(o *trackerOptions) { o.sessionStore = store }
}

// WithLocation sets the location string used for initial page detection.
func WithLocation(location string) Option {
	return func(o *trackerOptions) { o.location = location }
}

// WithLogger sets the tracker logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *trackerOptions) { o.logger = logging.OrNop(logger) }
}

// New constructs a Tracker. Construction never fails: an unreachable store is
// logged and treated as "no persisted value".
func New(opts ...Option) *Tracker {
	options := trackerOptions{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.roleStore == nil {
		options.roleStore = state.NewMemStore()
	}
	if options.sessionStore == nil {
		options.sessionStore = state.NewMemStore()
	}

	t := &Tracker{
		roleStore:    options.roleStore,
		sessionStore: options.sessionStore,
		logger:       options.logger,
		subscribers:  make(map[EventKind][]subscriber),
	}
	t.ctx = Context{
		Role:        t.loadRole(),
		CurrentPage: DetectPage(options.location),
		SessionID:   t.loadOrCreateSessionID(),
		Timestamp:   time.Now(),
	}
	t.watchRole()
	return t
}

// Close stops the role store watch.
func (t *Tracker) Close() error {
	if t.roleWatch != nil {
		return t.roleWatch.Close()
	}
	return nil
}

// Context returns a snapshot of the current context with the timestamp
// refreshed. The snapshot is a copy; mutating it does not affect the tracker.
func (t *Tracker) Context() Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Key returns the content lookup key for the current context.
func (t *Tracker) Key() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx.Key()
}

func (t *Tracker) String() string {
	return t.Context().String()
}

// Update merges the provided fields into the context. Each field that takes a
// new value emits its targeted event; the updated event always follows, even
// when nothing changed.
func (t *Tracker) Update(update Update) {
	t.mu.Lock()
	var changed []Event
	if update.Role != nil {
		role, ok := ParseRole(string(*update.Role))
		if !ok {
			t.logger.Warn("invalid role %q in update, using %q", *update.Role, DefaultRole)
		}
		if role != t.ctx.Role {
			t.ctx.Role = role
			changed = append(changed, Event{Kind: EventRoleChanged, Value: string(role)})
		}
	}
	if update.Page != nil && *update.Page != t.ctx.CurrentPage {
		t.ctx.CurrentPage = *update.Page
		changed = append(changed, Event{Kind: EventPageChanged, Value: *update.Page})
	}
	if update.Section != nil && *update.Section != t.ctx.CurrentSection {
		t.ctx.CurrentSection = *update.Section
		changed = append(changed, Event{Kind: EventSectionChanged, Value: *update.Section})
	}
	t.ctx.Timestamp = time.Now()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	for _, event := range changed {
		t.emit(event.Kind, event.Value, snapshot)
	}
	t.emit(EventUpdated, "", snapshot)
}

// SetRole validates and applies the role, persisting it best-effort to the
// role store. Invalid input is logged and replaced by the default role.
func (t *Tracker) SetRole(input string) {
	role, ok := ParseRole(input)
	if !ok {
		t.logger.Warn("invalid role %q, using %q as default", input, DefaultRole)
	}

	t.mu.Lock()
	t.ctx.Role = role
	t.ctx.Timestamp = time.Now()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	if err := t.roleStore.Set(state.KeyRole, string(role)); err != nil {
		t.logger.Warn("could not persist role: %v", err)
	}

	t.emit(EventRoleChanged, string(role), snapshot)
	t.emit(EventUpdated, "", snapshot)
}

// SetPage sets the current page. Any string is accepted.
func (t *Tracker) SetPage(page string) {
	t.mu.Lock()
	t.ctx.CurrentPage = page
	t.ctx.Timestamp = time.Now()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(EventPageChanged, page, snapshot)
	t.emit(EventUpdated, "", snapshot)
}

// SetSection sets the current section.
func (t *Tracker) SetSection(section string) {
	t.mu.Lock()
	t.ctx.CurrentSection = section
	t.ctx.Timestamp = time.Now()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(EventSectionChanged, section, snapshot)
	t.emit(EventUpdated, "", snapshot)
}

// TrackInteraction records the element the user just touched. An empty action
// defaults to "click" and an empty kind to "unknown". Only the updated event
// fires.
func (t *Tracker) TrackInteraction(elementID, elementKind, action string) {
	if action == "" {
		action = "click"
	}
	if elementKind == "" {
		elementKind = "unknown"
	}

	t.mu.Lock()
	t.ctx.ActiveElement = &ActiveElement{
		ID:        elementID,
		Kind:      elementKind,
		Action:    action,
		Timestamp: time.Now(),
	}
	t.ctx.Timestamp = time.Now()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.emit(EventUpdated, "", snapshot)
}

func (t *Tracker) snapshotLocked() Context {
	snapshot := t.ctx
	snapshot.Timestamp = time.Now()
	if t.ctx.ActiveElement != nil {
		element := *t.ctx.ActiveElement
		snapshot.ActiveElement = &element
	}
	return snapshot
}

func (t *Tracker) loadRole() Role {
	value, err := t.roleStore.Get(state.KeyRole)
	if err != nil {
		if err != state.ErrNotFound {
			t.logger.Warn("could not load role: %v", err)
		}
		return DefaultRole
	}
	role, ok := ParseRole(value)
	if !ok {
		t.logger.Warn("stored role %q invalid, using %q", value, DefaultRole)
	}
	return role
}

func (t *Tracker) loadOrCreateSessionID() string {
	if id, err := t.sessionStore.Get(state.KeySession); err == nil && id != "" {
		return id
	} else if err != nil && err != state.ErrNotFound {
		t.logger.Warn("could not access session storage: %v", err)
		return newSessionID()
	}
	id := newSessionID()
	if err := t.sessionStore.Set(state.KeySession, id); err != nil {
		t.logger.Warn("could not persist session id: %v", err)
	}
	return id
}

func newSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// watchRole wires cross-process role sync: when another writer updates the
// sticky role, the tracker adopts it and re-emits roleChanged.
func (t *Tracker) watchRole() {
	watch, err := t.roleStore.Watch(state.KeyRole, func(value string) {
		role, ok := ParseRole(value)
		if !ok && value != "" {
			t.logger.Warn("external role %q invalid, using %q", value, DefaultRole)
		}

		t.mu.Lock()
		if role == t.ctx.Role {
			t.mu.Unlock()
			return
		}
		t.ctx.Role = role
		t.ctx.Timestamp = time.Now()
		snapshot := t.snapshotLocked()
		t.mu.Unlock()

		t.emit(EventRoleChanged, string(role), snapshot)
	})
	if err != nil {
		if err != state.ErrWatchUnsupported {
			t.logger.Warn("role sync unavailable: %v", err)
		}
		return
	}
	t.roleWatch = watch
}
