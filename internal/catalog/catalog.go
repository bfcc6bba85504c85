// package catalog defines clients for the music catalogs the pipeline talks to.
//
// The target catalog (Apple Music) is consumed through the Catalog interface
// so the resolver and coordinator never depend on a concrete client. The
// source catalog (Spotify) is only read at import time.
package catalog

import (
	"context"
)

// Catalog is the lookup capability of the target catalog.
//
// Both calls are unreliable remote calls and may fail; callers decide how a
// failure degrades.
type Catalog interface {
	// LookupISRC performs an exact-identifier lookup for the given
	// storefront. Returns (nil, nil) when the catalog has no entry.
	LookupISRC(ctx context.Context, isrc, storefront string) (*Match, error)

	// Search runs a text search and returns up to limit candidates in
	// ranked order.
	Search(ctx context.Context, query, storefront string, limit int) ([]Match, error)
}

// Match is a candidate entry from the target catalog.
type Match struct {
	CatalogID   string
	Title       string
	ArtistName  string
	AlbumName   string
	ReleaseYear int
	ReleaseDate string
	PreviewURL  string
	ArtworkURL  string
	ISRC        string
}

// SourcePlaylist is a track list fetched from the source catalog at import
// time, before any reconciliation.
type SourcePlaylist struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Tracks      []SourceTrack
}

// SourceTrack is one entry of a source playlist.
type SourceTrack struct {
	Title       string
	Artist      string
	ISRC        string
	ReleaseYear int
}

// Source fetches playlists from the source catalog.
type Source interface {
	Playlist(ctx context.Context, playlistID string) (*SourcePlaylist, error)
}
