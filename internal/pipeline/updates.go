package pipeline

import (
	"fmt"

	"github.com/philipp-eisen/song-game/internal/models"
)

// ProgressUpdate represents a progress event during batch resolution.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase      Phase  // Operation phase
	PlaylistID string // Playlist being processed
	Step       int    // Current step number within phase
	Total      int    // Total steps in this phase
	Message    string // Human-readable message for display
	Data       any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchBatch Phase = iota
	ResolveTrack
	Aggregate
	Requeue
)

func (p Phase) String() string {
	switch p {
	case FetchBatch:
		return "fetch_batch"
	case ResolveTrack:
		return "resolve_track"
	case Aggregate:
		return "aggregate"
	case Requeue:
		return "requeue"
	default:
		return ""
	}
}

func fetchBatchUpdate(playlistID string, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:      FetchBatch,
		PlaylistID: playlistID,
		Step:       1,
		Total:      1,
		Message:    fmt.Sprintf("Fetched batch of %d pending tracks", size),
	}
}

func resolveTrackUpdate(playlistID string, step, total int, track *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:      ResolveTrack,
		PlaylistID: playlistID,
		Step:       step,
		Total:      total,
		Message:    fmt.Sprintf("[%d/%d] %s - %s", step, total, track.Artist, track.Title),
		Data:       track,
	}
}

func aggregateUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:      Aggregate,
		PlaylistID: playlist.ID,
		Step:       playlist.ReadyTracks + playlist.UnmatchedTracks,
		Total:      playlist.TotalTracks,
		Message: fmt.Sprintf("%s: %d ready, %d unmatched of %d",
			playlist.Status, playlist.ReadyTracks, playlist.UnmatchedTracks, playlist.TotalTracks),
		Data: playlist,
	}
}

func requeueUpdate(playlistID string, pending int) ProgressUpdate {
	return ProgressUpdate{
		Phase:      Requeue,
		PlaylistID: playlistID,
		Step:       1,
		Total:      1,
		Message:    fmt.Sprintf("%d tracks still pending, scheduling next batch", pending),
	}
}
