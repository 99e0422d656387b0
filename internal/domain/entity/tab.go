package entity

import "time"

// Tab is one open (or recently closed) browser tab. A closed tab keeps its
// row with ClosedOn set so "reopen last closed tab" can resurrect it.
type Tab struct {
	ID         int64      `json:"id"`
	Index      int        `json:"index"`
	IsSelected bool       `json:"is_selected"`
	ClosedOn   *time.Time `json:"closed_on,omitempty"`
	WindowID   int64      `json:"browser_window_id"`
	PlaceID    *int64     `json:"place_id,omitempty"`

	// Place carries the joined place record when the tab was loaded for
	// session restore; nil for blank tabs.
	Place *Place `json:"place,omitempty"`
}

// IsOpen reports whether the tab has not been soft-closed.
func (t *Tab) IsOpen() bool {
	return t != nil && t.ClosedOn == nil
}

// IsBlank reports whether the tab has never navigated anywhere.
func (t *Tab) IsBlank() bool {
	return t != nil && t.PlaceID == nil
}
