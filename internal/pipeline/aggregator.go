package pipeline

import (
	"hash/fnv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/repositories"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// lockStripes is the size of the fixed lock pool playlists hash into.
const lockStripes = 32

// Aggregator recomputes playlist counts and derived status from track rows.
//
// Recalculation is serialized per playlist so two batch runs finishing at
// the same time cannot interleave their read-then-write cycles. Playlists
// hash onto a fixed pool of striped locks, so memory stays bounded no matter
// how many playlists a long-lived process touches.
type Aggregator struct {
	playlists *repositories.PlaylistRepository
	logger    *log.Logger

	locks [lockStripes]sync.Mutex
}

// NewAggregator creates an Aggregator over the given playlist repository.
func NewAggregator(playlists *repositories.PlaylistRepository, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Aggregator{
		playlists: playlists,
		logger:    logger,
	}
}

// Recalculate recomputes the playlist's counts and status from its track
// rows and returns the updated playlist.
func (a *Aggregator) Recalculate(playlistID string) (*models.Playlist, error) {
	lock := a.lockFor(playlistID)
	lock.Lock()
	defer lock.Unlock()

	playlist, err := a.playlists.RecalculateCounts(playlistID)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("aggregated playlist counts",
		"playlist", playlistID,
		"status", playlist.Status,
		"ready", playlist.ReadyTracks,
		"unmatched", playlist.UnmatchedTracks,
		"pending", playlist.PendingTracks(),
	)

	return playlist, nil
}

func (a *Aggregator) lockFor(playlistID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(playlistID))
	return &a.locks[h.Sum32()%lockStripes]
}
