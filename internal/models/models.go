package models

import (
	"fmt"
	"time"
)

// Source identifies the catalog a playlist was imported from.
type Source string

const (
	SourceSpotify    Source = "spotify"
	SourceAppleMusic Source = "apple_music"
)

// Valid reports whether the source is a known catalog.
func (s Source) Valid() bool {
	return s == SourceSpotify || s == SourceAppleMusic
}

// PlaylistStatus is the derived state of a playlist's import pipeline.
type PlaylistStatus string

const (
	PlaylistImporting  PlaylistStatus = "importing"
	PlaylistProcessing PlaylistStatus = "processing"
	PlaylistReady      PlaylistStatus = "ready"
	PlaylistFailed     PlaylistStatus = "failed"
)

// TrackStatus is the per-track resolution state.
//
// A track is created pending (or directly ready when no resolution is
// needed) and transitions exactly once to ready or unmatched.
type TrackStatus string

const (
	TrackPending   TrackStatus = "pending"
	TrackReady     TrackStatus = "ready"
	TrackUnmatched TrackStatus = "unmatched"
)

// Playlist is an imported track list owned by a single user.
//
// Counts and status are mutated only by intake (create/replace) and the
// status aggregator. ReadyTracks + UnmatchedTracks never exceeds
// TotalTracks; the remainder is the implicit pending count.
type Playlist struct {
	ID               string         `json:"id"`
	Sequence         int            `json:"-"`
	OwnerID          string         `json:"ownerId"`
	Source           Source         `json:"source"`
	SourcePlaylistID string         `json:"sourcePlaylistId"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	ImageURL         string         `json:"imageUrl,omitempty"`
	Status           PlaylistStatus `json:"status"`
	TotalTracks      int            `json:"totalTracks"`
	ReadyTracks      int            `json:"readyTracks"`
	UnmatchedTracks  int            `json:"unmatchedTracks"`
	Generation       int            `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// PendingTracks returns the implicit pending count.
func (p *Playlist) PendingTracks() int {
	return p.TotalTracks - p.ReadyTracks - p.UnmatchedTracks
}

// Validate checks playlist invariants before persistence.
func (p *Playlist) Validate() error {
	if p.OwnerID == "" {
		return fmt.Errorf("playlist owner is required")
	}
	if !p.Source.Valid() {
		return fmt.Errorf("unknown playlist source: %q", p.Source)
	}
	if p.SourcePlaylistID == "" {
		return fmt.Errorf("source playlist id is required")
	}
	if p.ReadyTracks+p.UnmatchedTracks > p.TotalTracks {
		return fmt.Errorf("resolved counts exceed total: %d + %d > %d",
			p.ReadyTracks, p.UnmatchedTracks, p.TotalTracks)
	}
	return nil
}

// Track is a single entry of a playlist.
//
// Source-side fields describe the imported record; catalog-side fields are
// populated only when Status is ready. Position is 0-based and unique
// within a playlist.
type Track struct {
	ID         string      `json:"id"`
	PlaylistID string      `json:"playlistId"`
	Position   int         `json:"position"`
	Status     TrackStatus `json:"status"`

	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ISRC        string `json:"isrc,omitempty"`
	ReleaseYear int    `json:"releaseYear,omitempty"`

	CatalogID          string `json:"catalogId,omitempty"`
	CatalogTitle       string `json:"catalogTitle,omitempty"`
	CatalogArtist      string `json:"catalogArtist,omitempty"`
	CatalogAlbum       string `json:"catalogAlbum,omitempty"`
	CatalogReleaseYear int    `json:"catalogReleaseYear,omitempty"`
	CatalogISRC        string `json:"catalogIsrc,omitempty"`
	PreviewURL         string `json:"previewUrl,omitempty"`
	ArtworkURL         string `json:"artworkUrl,omitempty"`

	UnmatchedReason string `json:"unmatchedReason,omitempty"`

	Generation int       `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks track invariants before persistence.
func (t *Track) Validate() error {
	if t.PlaylistID == "" {
		return fmt.Errorf("track playlist id is required")
	}
	if t.Position < 0 {
		return fmt.Errorf("track position must be non-negative, got %d", t.Position)
	}
	if t.Title == "" {
		return fmt.Errorf("track title is required")
	}
	switch t.Status {
	case TrackPending, TrackReady, TrackUnmatched:
	default:
		return fmt.Errorf("unknown track status: %q", t.Status)
	}
	if t.Status == TrackUnmatched && t.UnmatchedReason == "" {
		return fmt.Errorf("unmatched track requires a reason")
	}
	return nil
}
