// Package library is the read boundary over imported playlists.
//
// Consumers that assemble play sessions read through [Reader]; by default
// they only ever see ready tracks, so a playlist mid-import is playable
// early with whatever has resolved so far.
package library

import (
	"errors"
	"fmt"

	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// PlaylistDetail is a playlist together with its track listing.
type PlaylistDetail struct {
	Playlist models.Playlist `json:"playlist"`
	Tracks   []*models.Track `json:"tracks"`
}

// Reader serves playlist lookups.
type Reader struct {
	playlists *repositories.PlaylistRepository
	tracks    *repositories.TrackRepository
}

// NewReader creates a Reader over the given repositories.
func NewReader(playlists *repositories.PlaylistRepository, tracks *repositories.TrackRepository) *Reader {
	return &Reader{playlists: playlists, tracks: tracks}
}

// ListOwned returns the owner's playlists in import order. An unknown owner
// gets an empty list, not an error.
func (r *Reader) ListOwned(ownerID string) ([]*models.Playlist, error) {
	playlists, err := r.playlists.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	if playlists == nil {
		playlists = []*models.Playlist{}
	}
	return playlists, nil
}

// Get returns a playlist with its tracks in position order. Only ready
// tracks are included unless includeAll is set. A missing playlist returns
// (nil, nil).
func (r *Reader) Get(playlistID string, includeAll bool) (*PlaylistDetail, error) {
	playlist, err := r.playlists.Get(playlistID)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	tracks, err := r.tracks.ListByPlaylist(playlistID, !includeAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	if tracks == nil {
		tracks = []*models.Track{}
	}

	return &PlaylistDetail{Playlist: *playlist, Tracks: tracks}, nil
}
