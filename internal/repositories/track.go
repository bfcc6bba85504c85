package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// TrackRepository handles track persistence.
//
// A pending track transitions exactly once, to ready or unmatched. Both
// transitions require the caller's import generation to still match the row,
// so results from a superseded import are dropped instead of persisted.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

const trackColumns = `id, playlist_id, position, status, title, artist, isrc, release_year,
	catalog_id, catalog_title, catalog_artist, catalog_album, catalog_release_year, catalog_isrc,
	preview_url, artwork_url, unmatched_reason, generation, created_at, updated_at`

// ResolvedFields is what a successful catalog match writes onto a track.
type ResolvedFields struct {
	CatalogID          string
	CatalogTitle       string
	CatalogArtist      string
	CatalogAlbum       string
	CatalogReleaseYear int
	CatalogISRC        string
	PreviewURL         string
	ArtworkURL         string
}

// ReplaceForPlaylist deletes all existing tracks of a playlist and inserts
// the given list in one transaction. Positions are assigned from slice order.
func (r *TrackRepository) ReplaceForPlaylist(playlistID string, generation int, tracks []*models.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to delete existing tracks: %w", err)
	}

	now := time.Now()

	query := `
		INSERT INTO tracks (` + trackColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, track := range tracks {
		track.ID = shared.GenerateID()
		track.PlaylistID = playlistID
		track.Position = i
		track.Generation = generation
		track.CreatedAt = now
		track.UpdatedAt = now

		if err := track.Validate(); err != nil {
			return fmt.Errorf("validation failed for track %d: %w", i, err)
		}

		_, err := tx.Exec(query,
			track.ID,
			track.PlaylistID,
			track.Position,
			track.Status,
			track.Title,
			track.Artist,
			track.ISRC,
			track.ReleaseYear,
			track.CatalogID,
			track.CatalogTitle,
			track.CatalogArtist,
			track.CatalogAlbum,
			track.CatalogReleaseYear,
			track.CatalogISRC,
			track.PreviewURL,
			track.ArtworkURL,
			track.UnmatchedReason,
			track.Generation,
			track.CreatedAt,
			track.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a track by ID.
func (r *TrackRepository) Get(id string) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`

	track, err := scanTrackFrom(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return track, nil
}

// ListPending retrieves up to limit pending tracks of a playlist, ordered by position.
func (r *TrackRepository) ListPending(playlistID string, limit int) ([]*models.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks
		WHERE playlist_id = ? AND status = ?
		ORDER BY position ASC
		LIMIT ?
	`

	return r.queryTracks(query, playlistID, models.TrackPending, limit)
}

// ListByPlaylist retrieves a playlist's tracks ordered by position.
// When onlyReady is set, pending and unmatched tracks are excluded.
func (r *TrackRepository) ListByPlaylist(playlistID string, onlyReady bool) ([]*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE playlist_id = ?`
	args := []any{playlistID}

	if onlyReady {
		query += " AND status = ?"
		args = append(args, models.TrackReady)
	}

	query += " ORDER BY position ASC"

	return r.queryTracks(query, args...)
}

// CountByStatus returns the number of a playlist's tracks per status.
func (r *TrackRepository) CountByStatus(playlistID string) (map[models.TrackStatus]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM tracks WHERE playlist_id = ? GROUP BY status", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TrackStatus]int)
	for rows.Next() {
		var status models.TrackStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan track counts: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// MarkReady transitions a pending track to ready with the given catalog fields.
//
// The update only applies while the track is still pending and belongs to the
// expected import generation; otherwise [shared.ErrStaleImport] is returned.
func (r *TrackRepository) MarkReady(id string, generation int, fields ResolvedFields) error {
	query := `
		UPDATE tracks
		SET status = ?, catalog_id = ?, catalog_title = ?, catalog_artist = ?, catalog_album = ?,
			catalog_release_year = ?, catalog_isrc = ?, preview_url = ?, artwork_url = ?, updated_at = ?
		WHERE id = ? AND status = ? AND generation = ?
	`

	result, err := r.db.Exec(query,
		models.TrackReady,
		fields.CatalogID,
		fields.CatalogTitle,
		fields.CatalogArtist,
		fields.CatalogAlbum,
		fields.CatalogReleaseYear,
		fields.CatalogISRC,
		fields.PreviewURL,
		fields.ArtworkURL,
		time.Now(),
		id,
		models.TrackPending,
		generation,
	)
	if err != nil {
		return fmt.Errorf("failed to mark track ready: %w", err)
	}

	return r.checkTransition(result, id)
}

// MarkUnmatched transitions a pending track to unmatched with a reason.
//
// Guarded the same way as MarkReady.
func (r *TrackRepository) MarkUnmatched(id string, generation int, reason string) error {
	query := `
		UPDATE tracks
		SET status = ?, unmatched_reason = ?, updated_at = ?
		WHERE id = ? AND status = ? AND generation = ?
	`

	result, err := r.db.Exec(query,
		models.TrackUnmatched,
		reason,
		time.Now(),
		id,
		models.TrackPending,
		generation,
	)
	if err != nil {
		return fmt.Errorf("failed to mark track unmatched: %w", err)
	}

	return r.checkTransition(result, id)
}

// checkTransition surfaces a zero-row status update as a stale-import error.
func (r *TrackRepository) checkTransition(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: track %s", shared.ErrStaleImport, id)
	}
	return nil
}

func (r *TrackRepository) queryTracks(query string, args ...any) ([]*models.Track, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrackFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

func scanTrackFrom(s rowScanner) (*models.Track, error) {
	var t models.Track
	err := s.Scan(
		&t.ID,
		&t.PlaylistID,
		&t.Position,
		&t.Status,
		&t.Title,
		&t.Artist,
		&t.ISRC,
		&t.ReleaseYear,
		&t.CatalogID,
		&t.CatalogTitle,
		&t.CatalogArtist,
		&t.CatalogAlbum,
		&t.CatalogReleaseYear,
		&t.CatalogISRC,
		&t.PreviewURL,
		&t.ArtworkURL,
		&t.UnmatchedReason,
		&t.Generation,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
