package session

import "github.com/keelbrowser/keel/internal/domain/entity"

// Events is the outbound interface to the UI shell and browser engine. The
// coordinator emits an explicit change event for every mutation it applies;
// the shell reacts by updating chrome, never by observing storage directly.
type Events interface {
	TabCreated(tab *entity.Tab)
	TabUpdated(tab *entity.Tab)
	TabClosed(tabID int64)
	WindowShouldClose(windowID int64)
	RestoreWindowGeometry(geo entity.Geometry)
}

// NopEvents discards all events. Used when no shell is attached (CLI mode)
// and as an embedding base for partial test sinks.
type NopEvents struct{}

func (NopEvents) TabCreated(*entity.Tab)                {}
func (NopEvents) TabUpdated(*entity.Tab)                {}
func (NopEvents) TabClosed(int64)                       {}
func (NopEvents) WindowShouldClose(int64)               {}
func (NopEvents) RestoreWindowGeometry(entity.Geometry) {}
