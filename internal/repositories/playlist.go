package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// PlaylistRepository handles playlist persistence.
//
// Counts and derived status are recomputed transactionally from track rows
// via RecalculateCounts; everything else is plain CRUD.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

const playlistColumns = `id, sequence, owner_id, source, source_playlist_id, name, description, image_url,
	status, total_tracks, ready_tracks, unmatched_tracks, generation, created_at, updated_at`

// Create inserts a new playlist with a generated ID and sequence.
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	playlist.ID = shared.GenerateID()
	playlist.Sequence = sequence
	if playlist.Generation == 0 {
		playlist.Generation = 1
	}
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (` + playlistColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		playlist.ID,
		playlist.Sequence,
		playlist.OwnerID,
		playlist.Source,
		playlist.SourcePlaylistID,
		playlist.Name,
		playlist.Description,
		playlist.ImageURL,
		playlist.Status,
		playlist.TotalTracks,
		playlist.ReadyTracks,
		playlist.UnmatchedTracks,
		playlist.Generation,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID.
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`
	return scanPlaylist(r.db.QueryRow(query, id))
}

// GetByOwnerAndSourceID retrieves the playlist imported for a given
// (owner, source playlist) pair.
func (r *PlaylistRepository) GetByOwnerAndSourceID(ownerID, sourcePlaylistID string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE owner_id = ? AND source_playlist_id = ?`
	return scanPlaylist(r.db.QueryRow(query, ownerID, sourcePlaylistID))
}

// ListByOwner retrieves all playlists owned by the given identity, in import order.
func (r *PlaylistRepository) ListByOwner(ownerID string) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE owner_id = ? ORDER BY sequence ASC`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylistRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// ListByStatus retrieves all playlists in the given status, in import order.
func (r *PlaylistRepository) ListByStatus(status models.PlaylistStatus) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE status = ? ORDER BY sequence ASC`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylistRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Update modifies an existing playlist's metadata, counts, status and generation.
func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.UpdatedAt = now

	query := `
		UPDATE playlists
		SET name = ?, description = ?, image_url = ?, status = ?,
			total_tracks = ?, ready_tracks = ?, unmatched_tracks = ?, generation = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		playlist.Name,
		playlist.Description,
		playlist.ImageURL,
		playlist.Status,
		playlist.TotalTracks,
		playlist.ReadyTracks,
		playlist.UnmatchedTracks,
		playlist.Generation,
		now,
		playlist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID)
	}

	return nil
}

// SetStatus updates only the playlist status. Used by intake to mark
// upstream fetch failures.
func (r *PlaylistRepository) SetStatus(id string, status models.PlaylistStatus) error {
	result, err := r.db.Exec(
		"UPDATE playlists SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set playlist status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// RecalculateCounts recomputes ready/unmatched counts from track rows and
// derives the playlist status, atomically relative to the counts read.
//
// Status becomes ready when nothing is pending, processing otherwise. A
// playlist marked failed by intake keeps that status; only its counts move.
func (r *PlaylistRepository) RecalculateCounts(id string) (*models.Playlist, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	playlist, err := scanPlaylist(tx.QueryRow(`SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query("SELECT status, COUNT(*) FROM tracks WHERE playlist_id = ? GROUP BY status", id)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}

	counts := make(map[models.TrackStatus]int)
	for rows.Next() {
		var status models.TrackStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan track counts: %w", err)
		}
		counts[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	playlist.ReadyTracks = counts[models.TrackReady]
	playlist.UnmatchedTracks = counts[models.TrackUnmatched]

	if playlist.Status != models.PlaylistFailed {
		if counts[models.TrackPending] == 0 {
			playlist.Status = models.PlaylistReady
		} else {
			playlist.Status = models.PlaylistProcessing
		}
	}

	playlist.UpdatedAt = time.Now()

	_, err = tx.Exec(
		"UPDATE playlists SET ready_tracks = ?, unmatched_tracks = ?, status = ?, updated_at = ? WHERE id = ?",
		playlist.ReadyTracks, playlist.UnmatchedTracks, playlist.Status, playlist.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update playlist counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit count update: %w", err)
	}

	return playlist, nil
}

// Delete removes a playlist and all of its tracks.
func (r *PlaylistRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tracks WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete tracks: %w", err)
	}

	result, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPlaylist scans a single row into a [models.Playlist].
func scanPlaylist(row *sql.Row) (*models.Playlist, error) {
	playlist, err := scanPlaylistFrom(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return playlist, nil
}

// scanPlaylistRow scans a row from [sql.Rows] into a [models.Playlist].
func scanPlaylistRow(rows *sql.Rows) (*models.Playlist, error) {
	playlist, err := scanPlaylistFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return playlist, nil
}

func scanPlaylistFrom(s rowScanner) (*models.Playlist, error) {
	var p models.Playlist
	err := s.Scan(
		&p.ID,
		&p.Sequence,
		&p.OwnerID,
		&p.Source,
		&p.SourcePlaylistID,
		&p.Name,
		&p.Description,
		&p.ImageURL,
		&p.Status,
		&p.TotalTracks,
		&p.ReadyTracks,
		&p.UnmatchedTracks,
		&p.Generation,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
