package entity

import "time"

// TransitionType describes how a navigation was initiated.
type TransitionType string

const (
	TransitionTyped    TransitionType = "typed"
	TransitionLink     TransitionType = "link"
	TransitionBookmark TransitionType = "bookmark"
	TransitionRedirect TransitionType = "redirect"
	TransitionEmbed    TransitionType = "embed"
)

// Valid reports whether t is one of the known transition types.
func (t TransitionType) Valid() bool {
	switch t {
	case TransitionTyped, TransitionLink, TransitionBookmark, TransitionRedirect, TransitionEmbed:
		return true
	}
	return false
}

// Visit is one timestamped navigation event referencing a place.
// Visits are immutable once recorded.
type Visit struct {
	ID         int64          `json:"id"`
	PlaceID    int64          `json:"place_id"`
	VisitDate  time.Time      `json:"visit_date"`
	Referrer   string         `json:"referrer,omitempty"`
	Transition TransitionType `json:"transition_type"`
}
