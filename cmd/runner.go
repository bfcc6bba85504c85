package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/catalog"
	"github.com/philipp-eisen/song-game/internal/pipeline"
	"github.com/philipp-eisen/song-game/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, resolveCommand, playlistCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database returns the injected connection or opens one from config. The
// returned closer is a no-op for injected connections.
func (r *Runner) database() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return db, func() { db.Close() }, nil
}

// sourceCatalog builds the Spotify client from config credentials.
func (r *Runner) sourceCatalog() (catalog.Source, error) {
	token := r.config.Credentials.Spotify.AccessToken
	if token == "" {
		return nil, fmt.Errorf("%w: Spotify access token not configured", shared.ErrMissingCredentials)
	}
	return catalog.NewSpotifySource(r.config.Credentials.Spotify.BaseURL, token, r.httpClient), nil
}

// targetCatalog builds the Apple Music client from config credentials.
func (r *Runner) targetCatalog() (catalog.Catalog, error) {
	token := r.config.Credentials.AppleMusic.DeveloperToken
	if token == "" {
		return nil, fmt.Errorf("%w: Apple Music developer token not configured", shared.ErrMissingCredentials)
	}
	return catalog.NewAppleMusicService(r.config.Credentials.AppleMusic.BaseURL, token, r.httpClient), nil
}

// pacer builds the catalog call pacer from config. rate_limit (requests per
// second) wins over rate_limit_ms when both are set.
func (r *Runner) pacer() pipeline.Pacer {
	p := r.config.Pipeline
	if p.RateLimit > 0 {
		return pipeline.NewFixedPacer(time.Duration(float64(time.Second) / p.RateLimit))
	}
	if p.RateLimitMS > 0 {
		return pipeline.NewFixedPacer(time.Duration(p.RateLimitMS) * time.Millisecond)
	}
	return pipeline.NopPacer{}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
