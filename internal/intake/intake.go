// Package intake creates and replaces imported playlists.
//
// Upsert is the single write entry point for playlist snapshots: a new
// (owner, source playlist) pair creates a playlist, a known pair replaces
// its full track list under a bumped import generation. Tracks that need no
// catalog resolution are seeded ready; everything else starts pending and
// is handed to the pipeline scheduler.
package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/catalog"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/pipeline"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// TrackInput is one track of a playlist snapshot.
//
// The catalog fields are set when the entry is already playable on the
// target catalog, either because the snapshot came from the target catalog
// itself or because the caller resolved it beforehand. Such tracks are
// seeded ready and skip the pipeline.
type TrackInput struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ISRC        string `json:"isrc,omitempty"`
	ReleaseYear int    `json:"releaseYear,omitempty"`

	CatalogID          string `json:"catalogId,omitempty"`
	CatalogAlbum       string `json:"catalogAlbum,omitempty"`
	CatalogReleaseYear int    `json:"catalogReleaseYear,omitempty"`
	PreviewURL         string `json:"previewUrl,omitempty"`
	ArtworkURL         string `json:"artworkUrl,omitempty"`
}

// preResolved reports whether the input already carries a playable target
// catalog entry. A bare catalog id is not enough: without a preview and a
// release year the track still has to go through resolution.
func (t TrackInput) preResolved() bool {
	if t.CatalogID == "" || t.PreviewURL == "" {
		return false
	}
	return t.CatalogReleaseYear != 0 || t.ReleaseYear != 0
}

// PlaylistInput is a full playlist snapshot to create or replace.
type PlaylistInput struct {
	OwnerID          string        `json:"ownerId"`
	Source           models.Source `json:"source"`
	SourcePlaylistID string        `json:"sourcePlaylistId"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	ImageURL         string        `json:"imageUrl,omitempty"`
	Tracks           []TrackInput  `json:"tracks"`
}

func (in PlaylistInput) validate() error {
	if in.OwnerID == "" {
		return fmt.Errorf("%w: owner id is required", shared.ErrInvalidInput)
	}
	if !in.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", shared.ErrInvalidInput, in.Source)
	}
	if in.SourcePlaylistID == "" {
		return fmt.Errorf("%w: source playlist id is required", shared.ErrInvalidInput)
	}
	return nil
}

// Importer writes playlist snapshots and schedules their resolution.
type Importer struct {
	playlists *repositories.PlaylistRepository
	tracks    *repositories.TrackRepository
	source    catalog.Source
	scheduler pipeline.Scheduler
	logger    *log.Logger
}

// NewImporter creates an Importer. The source may be nil when only Upsert
// is used; the scheduler may be nil when resolution is driven manually.
func NewImporter(
	playlists *repositories.PlaylistRepository,
	tracks *repositories.TrackRepository,
	source catalog.Source,
	scheduler pipeline.Scheduler,
	logger *log.Logger,
) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{
		playlists: playlists,
		tracks:    tracks,
		source:    source,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Upsert creates or fully replaces the playlist for the snapshot's
// (owner, source playlist) pair.
//
// A replacement discards every previous track row, including resolved ones,
// and bumps the import generation so in-flight batch results for the old
// snapshot are dropped. When pending tracks remain after seeding, the first
// batch run is scheduled; a scheduling failure is logged but does not undo
// the persisted snapshot.
func (im *Importer) Upsert(ctx context.Context, in PlaylistInput) (*models.Playlist, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	playlist, err := im.playlists.GetByOwnerAndSourceID(in.OwnerID, in.SourcePlaylistID)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		playlist = &models.Playlist{
			OwnerID:          in.OwnerID,
			Source:           in.Source,
			SourcePlaylistID: in.SourcePlaylistID,
			Name:             in.Name,
			Status:           models.PlaylistImporting,
		}
		if err := im.playlists.Create(playlist); err != nil {
			return nil, fmt.Errorf("failed to create playlist: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up playlist: %w", err)
	default:
		playlist.Generation++
		im.logger.Info("replacing playlist snapshot",
			"playlist", playlist.ID, "generation", playlist.Generation)
	}

	tracks, ready := im.buildTracks(in)

	if err := im.tracks.ReplaceForPlaylist(playlist.ID, playlist.Generation, tracks); err != nil {
		return nil, fmt.Errorf("failed to replace tracks: %w", err)
	}

	playlist.Name = in.Name
	playlist.Description = in.Description
	playlist.ImageURL = in.ImageURL
	playlist.TotalTracks = len(tracks)
	playlist.ReadyTracks = ready
	playlist.UnmatchedTracks = 0
	if playlist.PendingTracks() > 0 {
		playlist.Status = models.PlaylistProcessing
	} else {
		playlist.Status = models.PlaylistReady
	}

	if err := im.playlists.Update(playlist); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	if playlist.PendingTracks() > 0 && im.scheduler != nil {
		if err := im.scheduler.Enqueue(playlist.ID); err != nil {
			im.logger.Warn("failed to schedule resolution", "playlist", playlist.ID, "err", err)
		}
	}

	return playlist, nil
}

// ImportFromSource fetches the playlist from the source catalog and upserts
// the snapshot. An upstream fetch failure marks a previously imported
// playlist failed.
func (im *Importer) ImportFromSource(ctx context.Context, ownerID, sourcePlaylistID string) (*models.Playlist, error) {
	if im.source == nil {
		return nil, fmt.Errorf("%w: source catalog not configured", shared.ErrServiceUnavailable)
	}

	src, err := im.source.Playlist(ctx, sourcePlaylistID)
	if err != nil {
		im.markFetchFailed(ownerID, sourcePlaylistID)
		return nil, fmt.Errorf("failed to fetch source playlist: %w", err)
	}

	in := PlaylistInput{
		OwnerID:          ownerID,
		Source:           models.SourceSpotify,
		SourcePlaylistID: src.ID,
		Name:             src.Name,
		Description:      src.Description,
		ImageURL:         src.ImageURL,
		Tracks:           make([]TrackInput, len(src.Tracks)),
	}
	for i, track := range src.Tracks {
		in.Tracks[i] = TrackInput{
			Title:       track.Title,
			Artist:      track.Artist,
			ISRC:        track.ISRC,
			ReleaseYear: track.ReleaseYear,
		}
	}

	return im.Upsert(ctx, in)
}

// buildTracks converts the snapshot into track rows and returns them with
// the number seeded ready.
func (im *Importer) buildTracks(in PlaylistInput) ([]*models.Track, int) {
	sameCatalog := in.Source == models.SourceAppleMusic

	tracks := make([]*models.Track, len(in.Tracks))
	ready := 0
	for i, t := range in.Tracks {
		track := &models.Track{
			Status:      models.TrackPending,
			Title:       t.Title,
			Artist:      t.Artist,
			ISRC:        t.ISRC,
			ReleaseYear: t.ReleaseYear,
		}

		if sameCatalog || t.preResolved() {
			track.Status = models.TrackReady
			track.CatalogID = t.CatalogID
			track.CatalogTitle = t.Title
			track.CatalogArtist = t.Artist
			track.CatalogAlbum = t.CatalogAlbum
			track.CatalogReleaseYear = t.CatalogReleaseYear
			track.CatalogISRC = t.ISRC
			track.PreviewURL = t.PreviewURL
			track.ArtworkURL = t.ArtworkURL
			if track.CatalogReleaseYear == 0 {
				track.CatalogReleaseYear = t.ReleaseYear
			}
			ready++
		}

		tracks[i] = track
	}

	return tracks, ready
}

// markFetchFailed flags an already-imported playlist as failed. A fetch
// failure for a never-imported playlist leaves no record behind.
func (im *Importer) markFetchFailed(ownerID, sourcePlaylistID string) {
	playlist, err := im.playlists.GetByOwnerAndSourceID(ownerID, sourcePlaylistID)
	if err != nil {
		return
	}
	if err := im.playlists.SetStatus(playlist.ID, models.PlaylistFailed); err != nil {
		im.logger.Error("failed to mark playlist failed", "playlist", playlist.ID, "err", err)
	}
}
