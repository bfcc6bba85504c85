package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/philipp-eisen/song-game/internal/intake"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
	"github.com/philipp-eisen/song-game/internal/ui"
	"github.com/urfave/cli/v3"
)

// Import creates or replaces a playlist snapshot for an owner.
//
// With --file the snapshot is read from a JSON file; otherwise the playlist
// is fetched live from Spotify. With --resolve, pending tracks are resolved
// before the command returns.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	owner := cmd.String("owner")
	file := cmd.String("file")
	sourceID := cmd.Args().First()

	if file == "" && sourceID == "" {
		return fmt.Errorf("%w: a source playlist id or --file is required", shared.ErrMissingArgument)
	}

	db, closeDB, err := r.database()
	if err != nil {
		return err
	}
	defer closeDB()

	playlists := repositories.NewPlaylistRepository(db)
	tracks := repositories.NewTrackRepository(db)

	var playlist *models.Playlist

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read snapshot file: %w", err)
		}

		var in intake.PlaylistInput
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("%w: invalid snapshot file: %v", shared.ErrInvalidInput, err)
		}
		in.OwnerID = owner

		importer := intake.NewImporter(playlists, tracks, nil, nil, r.logger)
		playlist, err = importer.Upsert(ctx, in)
		if err != nil {
			return err
		}
	} else {
		source, err := r.sourceCatalog()
		if err != nil {
			return err
		}

		importer := intake.NewImporter(playlists, tracks, source, nil, r.logger)
		playlist, err = importer.ImportFromSource(ctx, owner, sourceID)
		if err != nil {
			return err
		}
	}

	r.writePlainln("Imported %q (%s)", playlist.Name, playlist.ID)
	r.writePlainln("  status: %s, %d tracks, %d pending",
		ui.PlaylistBadge(playlist.Status), playlist.TotalTracks, playlist.PendingTracks())

	if playlist.PendingTracks() == 0 {
		return nil
	}

	if !cmd.Bool("resolve") {
		r.writePlainln("%s", ui.Help("run 'song-game resolve' to match pending tracks"))
		return nil
	}

	return r.resolvePlaylists(ctx, db, []string{playlist.ID})
}
