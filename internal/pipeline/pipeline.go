package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/match"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// DefaultBatchSize is the number of pending tracks processed per run.
const DefaultBatchSize = 10

// TrackResolver matches one track query against the target catalog.
// Implemented by [match.Resolver].
type TrackResolver interface {
	Resolve(ctx context.Context, q match.Query) match.Outcome
}

// CoordinatorOpts bundles the dependencies of a [Coordinator].
type CoordinatorOpts struct {
	Playlists  *repositories.PlaylistRepository
	Tracks     *repositories.TrackRepository
	Resolver   TrackResolver
	Aggregator *Aggregator
	Pacer      Pacer
	Storefront string
	BatchSize  int
	Logger     *log.Logger
	Progress   chan<- ProgressUpdate
}

// Coordinator processes one batch of pending tracks per run.
//
// Each run fetches up to BatchSize pending tracks in position order,
// resolves them sequentially with a paced catalog call per track, persists
// every outcome individually, then recomputes the playlist's counts. The
// caller (normally the worker pool) schedules the next run while tracks
// remain pending.
type Coordinator struct {
	playlists  *repositories.PlaylistRepository
	tracks     *repositories.TrackRepository
	resolver   TrackResolver
	aggregator *Aggregator
	pacer      Pacer
	storefront string
	batchSize  int
	logger     *log.Logger
	progress   chan<- ProgressUpdate
}

// NewCoordinator creates a Coordinator from opts. BatchSize defaults to
// [DefaultBatchSize] and Pacer to [NopPacer] when unset.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pacer == nil {
		opts.Pacer = NopPacer{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Coordinator{
		playlists:  opts.Playlists,
		tracks:     opts.Tracks,
		resolver:   opts.Resolver,
		aggregator: opts.Aggregator,
		pacer:      opts.Pacer,
		storefront: opts.Storefront,
		batchSize:  opts.BatchSize,
		logger:     opts.Logger,
		progress:   opts.Progress,
	}
}

// ProcessBatch resolves one batch of the playlist's pending tracks and
// returns how many tracks are still pending afterwards.
//
// Every track outcome is persisted immediately, so a crash between tracks
// loses at most the track in flight. A stale-generation write aborts the
// rest of the batch: the playlist was re-imported and its new generation
// has its own scheduled runs.
func (c *Coordinator) ProcessBatch(ctx context.Context, playlistID string) (int, error) {
	batch, err := c.tracks.ListPending(playlistID, c.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending batch: %w", err)
	}

	c.sendProgress(fetchBatchUpdate(playlistID, len(batch)))

	stale := false
	for i, track := range batch {
		if err := c.pacer.Wait(ctx); err != nil {
			return 0, fmt.Errorf("pacing interrupted: %w", err)
		}

		c.sendProgress(resolveTrackUpdate(playlistID, i+1, len(batch), track))

		if err := c.resolveTrack(ctx, track); err != nil {
			if errors.Is(err, shared.ErrStaleImport) {
				c.logger.Info("import superseded mid-batch, dropping remaining results",
					"playlist", playlistID, "generation", track.Generation)
				stale = true
				break
			}
			return 0, err
		}
	}

	playlist, err := c.aggregator.Recalculate(playlistID)
	if err != nil {
		if stale && errors.Is(err, shared.ErrPlaylistNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to aggregate playlist: %w", err)
	}

	c.sendProgress(aggregateUpdate(playlist))

	pending := playlist.PendingTracks()
	if stale {
		// The superseding import schedules its own runs.
		return 0, nil
	}
	if pending > 0 {
		c.sendProgress(requeueUpdate(playlistID, pending))
	}
	return pending, nil
}

// resolveTrack resolves a single track and persists the outcome.
func (c *Coordinator) resolveTrack(ctx context.Context, track *models.Track) error {
	outcome := c.resolver.Resolve(ctx, match.Query{
		Title:      track.Title,
		Artist:     track.Artist,
		ISRC:       track.ISRC,
		Storefront: c.storefront,
	})

	if !outcome.Matched() {
		c.logger.Debug("track unmatched", "track", track.ID, "reason", outcome.Reason)
		return c.tracks.MarkUnmatched(track.ID, track.Generation, outcome.Reason)
	}

	m := outcome.Match
	return c.tracks.MarkReady(track.ID, track.Generation, repositories.ResolvedFields{
		CatalogID:          m.CatalogID,
		CatalogTitle:       m.Title,
		CatalogArtist:      m.ArtistName,
		CatalogAlbum:       m.AlbumName,
		CatalogReleaseYear: m.ReleaseYear,
		CatalogISRC:        m.ISRC,
		PreviewURL:         m.PreviewURL,
		ArtworkURL:         m.ArtworkURL,
	})
}

// sendProgress sends a progress update through the channel without blocking.
func (c *Coordinator) sendProgress(update ProgressUpdate) {
	if c.progress == nil {
		return
	}
	select {
	case c.progress <- update:
	default:
	}
}
