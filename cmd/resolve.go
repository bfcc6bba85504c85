package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/philipp-eisen/song-game/internal/match"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/pipeline"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
	"github.com/philipp-eisen/song-game/internal/ui"
	"github.com/urfave/cli/v3"
)

// Resolve drains pending tracks through the batch pipeline.
//
// Without --playlist, every playlist currently in processing state is
// scheduled. The command blocks until the work queue is empty. With --once,
// exactly one batch of a single playlist is processed.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.database()
	if err != nil {
		return err
	}
	defer closeDB()

	if cmd.Bool("once") {
		return r.resolveOnce(ctx, db, cmd.String("playlist"))
	}

	var ids []string
	if playlistID := cmd.String("playlist"); playlistID != "" {
		ids = []string{playlistID}
	} else {
		playlists, err := repositories.NewPlaylistRepository(db).ListByStatus(models.PlaylistProcessing)
		if err != nil {
			return err
		}
		for _, playlist := range playlists {
			ids = append(ids, playlist.ID)
		}
	}

	if len(ids) == 0 {
		r.writePlainln("Nothing to resolve")
		return nil
	}

	return r.resolvePlaylists(ctx, db, ids)
}

// resolveOnce processes a single batch for one playlist.
func (r *Runner) resolveOnce(ctx context.Context, db *sql.DB, playlistID string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: --once requires --playlist", shared.ErrMissingArgument)
	}

	coordinator, playlists, err := r.buildCoordinator(db, nil)
	if err != nil {
		return err
	}

	pending, err := coordinator.ProcessBatch(ctx, playlistID)
	if err != nil {
		return err
	}

	playlist, err := playlists.Get(playlistID)
	if err != nil {
		return err
	}

	r.writePlainln("%s %q: batch complete, %d tracks still pending",
		ui.PlaylistBadge(playlist.Status), playlist.Name, pending)
	return nil
}

// buildCoordinator wires the resolution pipeline for one invocation.
func (r *Runner) buildCoordinator(db *sql.DB, progress chan<- pipeline.ProgressUpdate) (*pipeline.Coordinator, *repositories.PlaylistRepository, error) {
	target, err := r.targetCatalog()
	if err != nil {
		return nil, nil, err
	}

	playlists := repositories.NewPlaylistRepository(db)
	tracks := repositories.NewTrackRepository(db)

	coordinator := pipeline.NewCoordinator(pipeline.CoordinatorOpts{
		Playlists:  playlists,
		Tracks:     tracks,
		Resolver:   match.NewResolver(target, r.logger),
		Aggregator: pipeline.NewAggregator(playlists, r.logger),
		Pacer:      r.pacer(),
		Storefront: r.config.Credentials.AppleMusic.Storefront,
		BatchSize:  r.config.Pipeline.BatchSize,
		Logger:     r.logger,
		Progress:   progress,
	})

	return coordinator, playlists, nil
}

// resolvePlaylists runs the worker pool over the given playlists until the
// queue drains, streaming progress to the output writer.
func (r *Runner) resolvePlaylists(ctx context.Context, db *sql.DB, ids []string) error {
	progress := make(chan pipeline.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == pipeline.ResolveTrack {
				r.writePlainln("  %s", update.Message)
			}
		}
	}()

	coordinator, playlists, err := r.buildCoordinator(db, progress)
	if err != nil {
		close(progress)
		<-done
		return err
	}

	pool := pipeline.NewWorkerPool(coordinator, r.config.Pipeline.Workers, r.config.Pipeline.QueueBacklog, r.logger)
	pool.Start(ctx)

	for _, id := range ids {
		if err := pool.Enqueue(id); err != nil {
			pool.Stop()
			close(progress)
			<-done
			return fmt.Errorf("failed to schedule playlist %s: %w", id, err)
		}
	}

	pool.Drain()
	pool.Stop()
	close(progress)
	<-done

	for _, id := range ids {
		playlist, err := playlists.Get(id)
		if err != nil {
			return err
		}
		r.writePlainln("%s %q: %d ready, %d unmatched of %d",
			ui.PlaylistBadge(playlist.Status), playlist.Name,
			playlist.ReadyTracks, playlist.UnmatchedTracks, playlist.TotalTracks)
	}

	return nil
}
