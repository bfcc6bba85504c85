// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// importCommand handles playlist intake
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a playlist snapshot for an owner",
		ArgsUsage: "[source-playlist-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "owner",
				Aliases:  []string{"o"},
				Usage:    "Owner identity the playlist belongs to",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Import a JSON snapshot file instead of fetching from Spotify",
			},
			&cli.BoolFlag{
				Name:  "resolve",
				Usage: "Resolve pending tracks immediately after import",
			},
		},
		Action: r.Import,
	}
}

// resolveCommand drives the batch resolution pipeline
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve pending tracks against the Apple Music catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Resolve a single playlist instead of all processing playlists",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Process exactly one batch of --playlist and exit",
			},
		},
		Action: r.Resolve,
	}
}

// playlistCommand handles read-side playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Inspect imported playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List an owner's playlists with import status",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Owner identity",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.List,
			},
			{
				Name:      "show",
				Usage:     "Show one playlist with its tracks",
				ArgsUsage: "<playlist-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include pending and unmatched tracks",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Export format: csv or md",
					},
				},
				Action: r.Show,
			},
		},
	}
}

// serveCommand runs the HTTP read API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the playlist read API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}
