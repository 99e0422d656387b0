// Package session hosts the coordinator that keeps the in-memory browsing
// session (windows, tabs, navigation state) synchronized with the store.
//
// The coordinator owns the open tab/window collections and is the sole
// writer of session mutations. It is driven from the shell's event-dispatch
// goroutine; the persistence layer underneath is the only concurrently
// shared resource and relies on the store's own transaction and constraint
// guarantees.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/keelbrowser/keel/internal/application/usecase"
	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
)

// ErrUnknownWindow is returned for operations on a window id the coordinator
// does not manage.
var ErrUnknownWindow = errors.New("unknown window")

// ErrUnknownTab is returned for operations on a tab id not open in any
// managed window.
var ErrUnknownTab = errors.New("unknown tab")

type windowSession struct {
	id    int64
	state WindowState
	tabs  []*entity.Tab // open tabs in dense index order
}

// Coordinator applies startup policies, mediates all session mutations and
// emits change events to the attached shell.
type Coordinator struct {
	places  repository.PlaceRepository
	visits  repository.VisitRepository
	tabs    repository.TabRepository
	windows repository.WindowRepository

	recordVisit *usecase.RecordVisitUseCase

	policy entity.StartupPolicy
	events Events

	open map[int64]*windowSession
}

// NewCoordinator wires a coordinator to its repositories. A nil events sink
// defaults to NopEvents.
func NewCoordinator(
	places repository.PlaceRepository,
	visits repository.VisitRepository,
	tabs repository.TabRepository,
	windows repository.WindowRepository,
	policy entity.StartupPolicy,
	events Events,
) *Coordinator {
	if events == nil {
		events = NopEvents{}
	}
	if !policy.Valid() {
		policy = entity.StartupOpenNewTab
	}
	return &Coordinator{
		places:      places,
		visits:      visits,
		tabs:        tabs,
		windows:     windows,
		recordVisit: usecase.NewRecordVisitUseCase(places, visits),
		policy:      policy,
		events:      events,
		open:        make(map[int64]*windowSession),
	}
}

// SetStartupPolicy applies a resolved startup setting. Only affects windows
// opened afterwards and the discard-on-exit gate.
func (c *Coordinator) SetStartupPolicy(policy entity.StartupPolicy) {
	if policy.Valid() {
		c.policy = policy
	}
}

// Policy returns the active startup policy.
func (c *Coordinator) Policy() entity.StartupPolicy {
	return c.policy
}

// WindowStateOf reports the lifecycle state of a window, StateClosed for
// windows no longer managed.
func (c *Coordinator) WindowStateOf(windowID int64) WindowState {
	if ws, ok := c.open[windowID]; ok {
		return ws.state
	}
	return StateClosed
}

// OpenTabs returns the coordinator's view of a window's open tabs in index
// order.
func (c *Coordinator) OpenTabs(windowID int64) []*entity.Tab {
	ws, ok := c.open[windowID]
	if !ok {
		return nil
	}
	out := make([]*entity.Tab, len(ws.tabs))
	copy(out, ws.tabs)
	return out
}

// OpenWindow creates a window, populates it according to the startup policy
// and brings it to the active state. A window never reaches active with zero
// tabs: empty or failed recovery falls back to a single blank tab.
func (c *Coordinator) OpenWindow(ctx context.Context) (int64, error) {
	ctx = logging.WithComponent(ctx, "session")
	log := logging.FromContext(ctx)

	windowID, err := c.windows.Create(ctx)
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}

	ws := &windowSession{id: windowID, state: StateEmpty}
	c.open[windowID] = ws

	ws.state = StatePopulating
	if err := c.populate(ctx, ws); err != nil {
		return 0, err
	}

	// A recovered session may carry no selection marker; select the first
	// tab so the window can activate.
	if c.selectedTab(ws) == nil && len(ws.tabs) > 0 {
		if err := c.persistSelection(ctx, ws, ws.tabs[0]); err != nil {
			log.Warn().Err(err).Msg("could not persist initial selection")
		}
	}

	ws.state = StateActive
	log.Info().
		Int64("window_id", windowID).
		Str("policy", string(c.policy)).
		Int("tabs", len(ws.tabs)).
		Msg("window active")

	return windowID, nil
}

func (c *Coordinator) populate(ctx context.Context, ws *windowSession) error {
	log := logging.FromContext(ctx)

	if c.policy.Restores() {
		recovered, err := c.recoverTabs(ctx, ws)
		if err != nil {
			// Degrade gracefully: a broken store must not leave the window
			// empty.
			log.Error().Err(err).Msg("tab recovery failed, falling back to blank tab")
		} else if recovered > 0 {
			log.Debug().Int("recovered", recovered).Msg("tabs recovered")
		}
	}

	if c.policy == entity.StartupRestoreAndOpenNewTab || len(ws.tabs) == 0 {
		tab, err := c.appendBlankTab(ctx, ws)
		if err != nil {
			return fmt.Errorf("create startup tab: %w", err)
		}
		if err := c.persistSelection(ctx, ws, tab); err != nil {
			log.Warn().Err(err).Msg("could not persist startup selection")
		}
	}

	return nil
}

// recoverTabs pulls the open tabs of the most recently closed window into
// this window and returns how many were adopted.
func (c *Coordinator) recoverTabs(ctx context.Context, ws *windowSession) (int, error) {
	last, err := c.windows.LastClosed(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil // first run, nothing to restore
		}
		return 0, fmt.Errorf("find last window: %w", err)
	}

	tabs, err := c.tabs.Open(ctx, last.ID)
	if err != nil {
		return 0, fmt.Errorf("recover tabs: %w", err)
	}

	for _, tab := range tabs {
		tab.WindowID = ws.id
		windowID := ws.id
		if err := c.tabs.Update(ctx, tab.ID, repository.TabUpdate{WindowID: &windowID}); err != nil {
			return 0, fmt.Errorf("adopt tab %d: %w", tab.ID, err)
		}
		ws.tabs = append(ws.tabs, tab)
		c.events.TabCreated(tab)
	}

	if err := c.renumber(ctx, ws); err != nil {
		return 0, err
	}
	return len(tabs), nil
}

func (c *Coordinator) appendBlankTab(ctx context.Context, ws *windowSession) (*entity.Tab, error) {
	tabID, err := c.tabs.Create(ctx, ws.id)
	if err != nil {
		return nil, err
	}

	tab := &entity.Tab{ID: tabID, WindowID: ws.id, Index: len(ws.tabs)}
	ws.tabs = append(ws.tabs, tab)

	idx := tab.Index
	if err := c.tabs.Update(ctx, tabID, repository.TabUpdate{Index: &idx}); err != nil {
		return nil, err
	}

	c.events.TabCreated(tab)
	return tab, nil
}

// NewTab opens a blank tab at the end of the window's strip and selects it.
func (c *Coordinator) NewTab(ctx context.Context, windowID int64) (int64, error) {
	ctx = logging.WithWindowID(logging.WithComponent(ctx, "session"), windowID)

	ws, ok := c.open[windowID]
	if !ok || ws.state != StateActive {
		return 0, ErrUnknownWindow
	}

	tab, err := c.appendBlankTab(ctx, ws)
	if err != nil {
		return 0, fmt.Errorf("new tab: %w", err)
	}
	if err := c.persistSelection(ctx, ws, tab); err != nil {
		return 0, err
	}
	return tab.ID, nil
}

// CloseTab soft-closes a tab, renumbers the survivors and moves the
// selection to a neighbor. Removing the last tab sends the window into
// closing: a window with zero tabs closes itself.
func (c *Coordinator) CloseTab(ctx context.Context, tabID int64) error {
	ctx = logging.WithTabID(logging.WithComponent(ctx, "session"), tabID)

	ws, pos := c.findTab(tabID)
	if ws == nil {
		return ErrUnknownTab
	}

	closing := ws.tabs[pos]
	if err := c.tabs.Close(ctx, tabID); err != nil {
		return fmt.Errorf("close tab: %w", err)
	}

	ws.tabs = append(ws.tabs[:pos], ws.tabs[pos+1:]...)
	c.events.TabClosed(tabID)

	if len(ws.tabs) == 0 {
		ws.state = StateClosing
		c.events.WindowShouldClose(ws.id)
		return nil
	}

	if err := c.renumber(ctx, ws); err != nil {
		return err
	}

	if closing.IsSelected {
		next := pos
		if next >= len(ws.tabs) {
			next = len(ws.tabs) - 1
		}
		if err := c.persistSelection(ctx, ws, ws.tabs[next]); err != nil {
			return err
		}
	}
	return nil
}

// SelectTab marks a tab as the window's selected tab.
func (c *Coordinator) SelectTab(ctx context.Context, tabID int64) error {
	ctx = logging.WithTabID(logging.WithComponent(ctx, "session"), tabID)

	ws, pos := c.findTab(tabID)
	if ws == nil {
		return ErrUnknownTab
	}
	return c.persistSelection(ctx, ws, ws.tabs[pos])
}

// ReorderTabs applies the shell's new tab order for a window. The id set
// must match the window's open tabs exactly.
func (c *Coordinator) ReorderTabs(ctx context.Context, windowID int64, orderedIDs []int64) error {
	ctx = logging.WithWindowID(logging.WithComponent(ctx, "session"), windowID)

	ws, ok := c.open[windowID]
	if !ok || ws.state != StateActive {
		return ErrUnknownWindow
	}
	if len(orderedIDs) != len(ws.tabs) {
		return fmt.Errorf("%w: reorder set has %d ids, window has %d tabs",
			repository.ErrInvalidArgument, len(orderedIDs), len(ws.tabs))
	}

	byID := make(map[int64]*entity.Tab, len(ws.tabs))
	for _, tab := range ws.tabs {
		byID[tab.ID] = tab
	}

	reordered := make([]*entity.Tab, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		tab, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: tab %d is not open in window %d",
				repository.ErrInvalidArgument, id, windowID)
		}
		delete(byID, id)
		reordered = append(reordered, tab)
	}

	ws.tabs = reordered
	return c.renumber(ctx, ws)
}

// Navigate records a navigation of a tab to a URL and rebinds the tab to the
// visited place. Navigations to about:blank leave the tab blank.
func (c *Coordinator) Navigate(ctx context.Context, tabID int64, url string, transition entity.TransitionType) error {
	ctx = logging.WithTabID(logging.WithComponent(ctx, "session"), tabID)

	ws, pos := c.findTab(tabID)
	if ws == nil {
		return ErrUnknownTab
	}
	tab := ws.tabs[pos]

	out, err := c.recordVisit.Execute(ctx, usecase.RecordVisitInput{
		URL:        url,
		Transition: transition,
	})
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if out == nil {
		return nil // about:blank
	}

	tab.PlaceID = &out.PlaceID
	placeID := out.PlaceID
	if err := c.tabs.Update(ctx, tabID, repository.TabUpdate{PlaceID: &placeID}); err != nil {
		return fmt.Errorf("bind tab to place: %w", err)
	}

	c.events.TabUpdated(tab)
	return nil
}

// NavigationObserved applies title/favicon metadata the engine reported for
// a tab's current page. Updates for places deleted concurrently are stale
// and ignored.
func (c *Coordinator) NavigationObserved(ctx context.Context, tabID int64, title, faviconURL string) error {
	ctx = logging.WithTabID(logging.WithComponent(ctx, "session"), tabID)
	log := logging.FromContext(ctx)

	ws, pos := c.findTab(tabID)
	if ws == nil {
		return ErrUnknownTab
	}
	tab := ws.tabs[pos]
	if tab.PlaceID == nil {
		return nil // blank tab, nothing to annotate
	}

	var upd repository.PlaceUpdate
	if title != "" {
		upd.Title = &title
	}
	if faviconURL != "" {
		upd.FaviconURL = &faviconURL
	}
	if upd.Title == nil && upd.FaviconURL == nil {
		return nil
	}

	err := c.places.Update(ctx, *tab.PlaceID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug().Int64("place_id", *tab.PlaceID).Msg("stale metadata update for deleted place")
		return nil
	}
	if err != nil {
		return fmt.Errorf("update place metadata: %w", err)
	}

	c.events.TabUpdated(tab)
	return nil
}

// ReopenClosedTab pops the most recently closed tab and reopens it at the
// end of the window's strip, selected. Each closed tab can be reclaimed once:
// calling again returns the next most recent. Returns nil when no closed tab
// remains.
func (c *Coordinator) ReopenClosedTab(ctx context.Context, windowID int64) (*entity.Tab, error) {
	ctx = logging.WithWindowID(logging.WithComponent(ctx, "session"), windowID)

	ws, ok := c.open[windowID]
	if !ok || ws.state != StateActive {
		return nil, ErrUnknownWindow
	}

	tab, err := c.tabs.PopClosed(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reopen closed tab: %w", err)
	}

	tab.WindowID = ws.id
	tab.Index = len(ws.tabs)
	ws.tabs = append(ws.tabs, tab)

	idx := tab.Index
	if err := c.tabs.Update(ctx, tab.ID, repository.TabUpdate{
		Index:    &idx,
		WindowID: &ws.id,
	}); err != nil {
		return nil, fmt.Errorf("rebind reopened tab: %w", err)
	}

	c.events.TabCreated(tab)
	if err := c.persistSelection(ctx, ws, tab); err != nil {
		return nil, err
	}
	return tab, nil
}

// WindowClosed records a window's final geometry and retires it. After the
// last window closes, session state is discarded when the startup policy
// does not restore; the gate never fires while a sibling window still
// depends on the persisted state.
func (c *Coordinator) WindowClosed(ctx context.Context, windowID int64, geo entity.Geometry) error {
	ctx = logging.WithWindowID(logging.WithComponent(ctx, "session"), windowID)
	log := logging.FromContext(ctx)

	ws, ok := c.open[windowID]
	if !ok {
		return ErrUnknownWindow
	}

	ws.state = StateClosing
	if err := c.windows.SaveState(ctx, windowID, geo); err != nil {
		// Persistence is degraded but the shutdown continues; restoring this
		// window's geometry will not be possible.
		log.Error().Err(err).Msg("could not save window state")
	}
	ws.state = StateClosed
	delete(c.open, windowID)

	if len(c.open) == 0 && !c.policy.Restores() {
		log.Info().Msg("last window closed, discarding session state")
		if err := c.tabs.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear tabs: %w", err)
		}
		if err := c.windows.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear windows: %w", err)
		}
	}
	return nil
}

// RestoreGeometry fetches the last closed window's geometry for the shell to
// apply to the first window of a new run. Returns nil on first run.
func (c *Coordinator) RestoreGeometry(ctx context.Context) (*entity.Geometry, error) {
	ctx = logging.WithComponent(ctx, "session")

	last, err := c.windows.LastClosed(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore geometry: %w", err)
	}

	geo := last.Geometry()
	c.events.RestoreWindowGeometry(geo)
	return &geo, nil
}

// DiscardTab hard-deletes a tab with no history worth keeping, e.g. an
// abandoned blank tab.
func (c *Coordinator) DiscardTab(ctx context.Context, tabID int64) error {
	ctx = logging.WithTabID(logging.WithComponent(ctx, "session"), tabID)

	if ws, pos := c.findTab(tabID); ws != nil {
		ws.tabs = append(ws.tabs[:pos], ws.tabs[pos+1:]...)
		c.events.TabClosed(tabID)
		if err := c.tabs.Delete(ctx, tabID); err != nil {
			return fmt.Errorf("discard tab: %w", err)
		}
		if len(ws.tabs) == 0 {
			ws.state = StateClosing
			c.events.WindowShouldClose(ws.id)
			return nil
		}
		return c.renumber(ctx, ws)
	}

	// Not open anywhere: delete the soft-closed row if it exists.
	if err := c.tabs.Delete(ctx, tabID); err != nil {
		return fmt.Errorf("discard tab: %w", err)
	}
	return nil
}

// renumber rewrites the dense 0..N-1 index sequence after any change to the
// open tab set, persisting only the indices that moved.
func (c *Coordinator) renumber(ctx context.Context, ws *windowSession) error {
	for i, tab := range ws.tabs {
		if tab.Index == i {
			continue
		}
		tab.Index = i
		idx := i
		if err := c.tabs.Update(ctx, tab.ID, repository.TabUpdate{Index: &idx}); err != nil {
			return fmt.Errorf("renumber tab %d: %w", tab.ID, err)
		}
		c.events.TabUpdated(tab)
	}
	return nil
}

func (c *Coordinator) persistSelection(ctx context.Context, ws *windowSession, tab *entity.Tab) error {
	for _, other := range ws.tabs {
		if other.IsSelected && other.ID != tab.ID {
			other.IsSelected = false
			deselected := false
			if err := c.tabs.Update(ctx, other.ID, repository.TabUpdate{IsSelected: &deselected}); err != nil {
				return fmt.Errorf("deselect tab %d: %w", other.ID, err)
			}
			c.events.TabUpdated(other)
		}
	}

	if !tab.IsSelected {
		tab.IsSelected = true
		selected := true
		if err := c.tabs.Update(ctx, tab.ID, repository.TabUpdate{IsSelected: &selected}); err != nil {
			return fmt.Errorf("select tab %d: %w", tab.ID, err)
		}
		c.events.TabUpdated(tab)
	}
	return nil
}

func (c *Coordinator) selectedTab(ws *windowSession) *entity.Tab {
	for _, tab := range ws.tabs {
		if tab.IsSelected {
			return tab
		}
	}
	return nil
}

func (c *Coordinator) findTab(tabID int64) (*windowSession, int) {
	for _, ws := range c.open {
		if ws.state != StateActive {
			continue
		}
		for i, tab := range ws.tabs {
			if tab.ID == tabID {
				return ws, i
			}
		}
	}
	return nil, -1
}
