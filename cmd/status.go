package main

import (
	"context"
	"fmt"

	"github.com/philipp-eisen/song-game/internal/formatter"
	"github.com/philipp-eisen/song-game/internal/library"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
	"github.com/philipp-eisen/song-game/internal/ui"
	"github.com/urfave/cli/v3"
)

// List prints an owner's playlists with their import status.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.database()
	if err != nil {
		return err
	}
	defer closeDB()

	reader := library.NewReader(
		repositories.NewPlaylistRepository(db),
		repositories.NewTrackRepository(db),
	)

	playlists, err := reader.ListOwned(cmd.String("owner"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		r.writePlainln("No playlists imported for this owner")
		return nil
	}

	r.writePlainln("%s", ui.Title(fmt.Sprintf("Playlists (%d)", len(playlists))))
	for _, playlist := range playlists {
		r.writePlainln("%s  %s  %d/%d ready  %s",
			playlist.ID, ui.PlaylistBadge(playlist.Status),
			playlist.ReadyTracks, playlist.TotalTracks, playlist.Name)
	}

	return nil
}

// Show prints one playlist with its track listing. Only ready tracks are
// shown unless --all is set.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	db, closeDB, err := r.database()
	if err != nil {
		return err
	}
	defer closeDB()

	reader := library.NewReader(
		repositories.NewPlaylistRepository(db),
		repositories.NewTrackRepository(db),
	)

	detail, err := reader.Get(playlistID, cmd.Bool("all"))
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	switch cmd.String("export") {
	case "":
	case "csv":
		data, err := formatter.ExportToCSV(detail)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "md":
		data, err := formatter.ExportToMarkdown(detail)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	default:
		return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, cmd.String("export"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	playlist := detail.Playlist
	r.writePlainln("%s", ui.Title(playlist.Name))
	r.writePlainln("status: %s  tracks: %d total, %d ready, %d unmatched, %d pending",
		ui.PlaylistBadge(playlist.Status), playlist.TotalTracks,
		playlist.ReadyTracks, playlist.UnmatchedTracks, playlist.PendingTracks())

	for _, track := range detail.Tracks {
		line := fmt.Sprintf("%3d. [%s] %s - %s", track.Position+1, ui.TrackBadge(track.Status), track.Artist, track.Title)
		if track.Status == models.TrackUnmatched {
			line += "  " + ui.Help(track.UnmatchedReason)
		}
		r.writePlainln("%s", line)
	}

	return nil
}
