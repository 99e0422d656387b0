package entity

import "time"

// HistoryEntry is one row of the paginated history view: a distinct place
// together with its most recent visit.
type HistoryEntry struct {
	VisitID      int64     `json:"visit_id"`
	PlaceID      int64     `json:"place_id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	FaviconURL   string    `json:"favicon_url"`
	Hostname     string    `json:"hostname"`
	IsBookmarked bool      `json:"is_bookmarked"`
	VisitDate    time.Time `json:"visit_date"`
}

// HistoryCursor marks the position after the last entry of a page. The id
// component is the visit id, the deterministic tie-break when visit
// timestamps collide.
type HistoryCursor struct {
	VisitDate time.Time `json:"visit_date"`
	VisitID   int64     `json:"visit_id"`
}

// HistoryPage is one keyset-paginated slice of history.
// NextCursor is nil once the history is exhausted.
type HistoryPage struct {
	Entries    []HistoryEntry `json:"entries"`
	NextCursor *HistoryCursor `json:"next_cursor,omitempty"`
}
