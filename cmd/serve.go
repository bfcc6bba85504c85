package main

import (
	"context"
	"fmt"

	"github.com/philipp-eisen/song-game/internal/library"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the playlist read API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.database()
	if err != nil {
		return err
	}
	defer closeDB()

	host := r.config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.Int("port") != 0 {
		port = int(cmd.Int("port"))
	}

	reader := library.NewReader(
		repositories.NewPlaylistRepository(db),
		repositories.NewTrackRepository(db),
	)
	router := server.NewRouter(reader, r.logger)

	return server.Serve(ctx, fmt.Sprintf("%s:%d", host, port), router, r.logger)
}
