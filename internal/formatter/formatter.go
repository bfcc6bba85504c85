// package formatter exports playlist listings to CSV and Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/philipp-eisen/song-game/internal/library"
	"github.com/philipp-eisen/song-game/internal/models"
)

// ExportToCSV converts a playlist detail to CSV with one row per track.
func ExportToCSV(detail *library.PlaylistDetail) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Status", "Title", "Artist", "ISRC", "CatalogID", "PreviewURL", "UnmatchedReason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range detail.Tracks {
		record := []string{
			strconv.Itoa(track.Position),
			string(track.Status),
			track.Title,
			track.Artist,
			track.ISRC,
			track.CatalogID,
			track.PreviewURL,
			track.UnmatchedReason,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist detail to a Markdown reconciliation report.
func ExportToMarkdown(detail *library.PlaylistDetail) ([]byte, error) {
	var buf bytes.Buffer
	playlist := detail.Playlist

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))

	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Status:** %s  \n", playlist.Status))
	buf.WriteString(fmt.Sprintf("**Tracks:** %d total, %d ready, %d unmatched\n\n",
		playlist.TotalTracks, playlist.ReadyTracks, playlist.UnmatchedTracks))

	buf.WriteString("| # | Status | Title | Artist | Catalog Entry |\n")
	buf.WriteString("|---|--------|-------|--------|---------------|\n")

	for _, track := range detail.Tracks {
		entry := track.CatalogID
		if track.Status == models.TrackUnmatched {
			entry = track.UnmatchedReason
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			track.Position+1, track.Status, track.Title, track.Artist, entry))
	}

	return buf.Bytes(), nil
}
