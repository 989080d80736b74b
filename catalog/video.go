// Package catalog fetches video metadata from the upstream paginated catalog
// API and caches it by video identity.
package catalog

import "time"

// Video is a catalog entry. Values are never mutated once built; a re-fetch of
// the same ID produces a new Video that supersedes the old one.
type Video struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	VideoID      string    `json:"video_id"` // external (YouTube) identifier
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Page is one page of upstream results.
type Page struct {
	// Number is the 1-indexed page that was requested.
	Number int
	// Videos holds the page's records in upstream order.
	Videos []*Video
	// Total is the upstream-reported size of the whole catalog.
	Total int
}
