package helpctx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"visionhelp/internal/state"
)

func TestNewTrackerDefaults(t *testing.T) {
	tracker := New(WithLocation("/dashboard/workbench"))
	defer tracker.Close()

	ctx := tracker.Context()
	require.Equal(t, RoleAdmin, ctx.Role)
	require.Equal(t, "workbench", ctx.CurrentPage)
	require.Empty(t, ctx.CurrentSection)
	require.True(t, strings.HasPrefix(ctx.SessionID, "session_"))
	require.Equal(t, "admin:workbench", tracker.Key())
}

func TestNewTrackerLoadsPersistedRole(t *testing.T) {
	store := state.NewMemStore()
	require.NoError(t, store.Set(state.KeyRole, "ciso"))

	tracker := New(WithRoleStore(store))
	defer tracker.Close()
	require.Equal(t, RoleCISO, tracker.Context().Role)
}

func TestNewTrackerRejectsInvalidPersistedRole(t *testing.T) {
	store := state.NewMemStore()
	require.NoError(t, store.Set(state.KeyRole, "superuser"))

	tracker := New(WithRoleStore(store))
	defer tracker.Close()
	require.Equal(t, RoleAdmin, tracker.Context().Role)
}

func TestSessionIDStableAcrossTrackers(t *testing.T) {
	store := state.NewMemStore()

	first := New(WithSessionStore(store))
	id := first.Context().SessionID
	first.Close()

	second := New(WithSessionStore(store))
	defer second.Close()
	require.Equal(t, id, second.Context().SessionID)
}

func TestSetRoleValidatesAndPersists(t *testing.T) {
	store := state.NewMemStore()
	tracker := New(WithRoleStore(store))
	defer tracker.Close()

	tracker.SetRole("viewer")
	require.Equal(t, RoleViewer, tracker.Context().Role)
	persisted, err := store.Get(state.KeyRole)
	require.NoError(t, err)
	require.Equal(t, "viewer", persisted)

	tracker.SetRole("not-a-role")
	require.Equal(t, RoleAdmin, tracker.Context().Role)
}

func TestSetRoleEmitsEventsInOrder(t *testing.T) {
	tracker := New()
	defer tracker.Close()

	var got []EventKind
	tracker.On(EventRoleChanged, func(e Event) {
		got = append(got, e.Kind)
		require.Equal(t, "analyst", e.Value)
	})
	tracker.On(EventUpdated, func(e Event) {
		got = append(got, e.Kind)
	})

	tracker.SetRole("analyst")
	require.Equal(t, []EventKind{EventRoleChanged, EventUpdated}, got)
}

func TestUpdateEmitsOnlyChangedFieldEvents(t *testing.T) {
	tracker := New(WithLocation("/index.html"))
	defer tracker.Close()

	var fired []EventKind
	for _, kind := range []EventKind{EventRoleChanged, EventPageChanged, EventSectionChanged, EventUpdated} {
		kind := kind
		tracker.On(kind, func(Event) { fired = append(fired, kind) })
	}

	page := "workbench"
	section := ""
	role := RoleAdmin // unchanged
	tracker.Update(Update{Role: &role, Page: &page, Section: &section})

	// Role and section did not change value, so only the page event fires
	// before the general updated event.
	require.Equal(t, []EventKind{EventPageChanged, EventUpdated}, fired)
	require.Equal(t, "workbench", tracker.Context().CurrentPage)
}

func TestUpdateAlwaysEmitsUpdated(t *testing.T) {
	tracker := New()
	defer tracker.Close()

	updates := 0
	tracker.On(EventUpdated, func(Event) { updates++ })

	tracker.Update(Update{})
	require.Equal(t, 1, updates)
}

func TestTrackInteractionRecordsActiveElement(t *testing.T) {
	tracker := New()
	defer tracker.Close()

	fired := 0
	tracker.On(EventUpdated, func(Event) { fired++ })
	tracker.On(EventPageChanged, func(Event) {
		t.Fatal("interaction must not emit page events")
	})

	tracker.TrackInteraction("risk-score", "", "")
	ctx := tracker.Context()
	require.NotNil(t, ctx.ActiveElement)
	require.Equal(t, "risk-score", ctx.ActiveElement.ID)
	require.Equal(t, "unknown", ctx.ActiveElement.Kind)
	require.Equal(t, "click", ctx.ActiveElement.Action)
	require.Equal(t, 1, fired)

	// Overwritten, never accumulated.
	tracker.TrackInteraction("asset-table", "table", "hover")
	ctx = tracker.Context()
	require.Equal(t, "asset-table", ctx.ActiveElement.ID)
	require.Equal(t, "hover", ctx.ActiveElement.Action)
}

func TestContextReturnsSnapshotCopy(t *testing.T) {
	tracker := New()
	defer tracker.Close()
	tracker.TrackInteraction("widget", "div", "click")

	snapshot := tracker.Context()
	snapshot.CurrentPage = "mutated"
	snapshot.ActiveElement.ID = "mutated"

	fresh := tracker.Context()
	require.NotEqual(t, "mutated", fresh.CurrentPage)
	require.Equal(t, "widget", fresh.ActiveElement.ID)
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	tracker := New()
	defer tracker.Close()

	tracker.On(EventUpdated, func(Event) { panic("boom") })
	reached := false
	tracker.On(EventUpdated, func(Event) { reached = true })

	tracker.SetSection("overview")
	require.True(t, reached)
	require.Equal(t, "overview", tracker.Context().CurrentSection)
}

func TestOffRemovesHandler(t *testing.T) {
	tracker := New()
	defer tracker.Close()

	calls := 0
	sub := tracker.On(EventPageChanged, func(Event) { calls++ })
	tracker.SetPage("workbench")
	tracker.Off(sub)
	tracker.SetPage("home")
	require.Equal(t, 1, calls)
}

func TestExternalRoleChangeSyncsTracker(t *testing.T) {
	dir := t.TempDir()
	store, err := state.NewFileStore(dir)
	require.NoError(t, err)

	tracker := New(WithRoleStore(store))
	defer tracker.Close()
	require.Equal(t, RoleAdmin, tracker.Context().Role)

	roleChanges := make(chan string, 1)
	tracker.On(EventRoleChanged, func(e Event) { roleChanges <- e.Value })

	// Simulate another engine process writing the sticky role.
	other, err := state.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, other.Set(state.KeyRole, "viewer"))

	select {
	case value := <-roleChanges:
		require.Equal(t, "viewer", value)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for external role sync")
	}
	require.Equal(t, RoleViewer, tracker.Context().Role)
}
