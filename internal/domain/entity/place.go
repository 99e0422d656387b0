package entity

import "time"

// Place is the canonical record for a distinct normalized URL. Exactly one
// place exists per normalized URL; it is created on first visit and its
// mutable metadata is refreshed on every subsequent visit.
type Place struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	NormalizedURL string    `json:"normalized_url"`
	Hostname      string    `json:"hostname"`
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	FaviconURL    string    `json:"favicon_url"`
	VisitCount    int64     `json:"visit_count"`
	LastVisitDate time.Time `json:"last_visit_date"`
	TypedCount    int64     `json:"typed_count"`
	IsBookmarked  bool      `json:"is_bookmarked"`
}
