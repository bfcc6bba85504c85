// package shared defines the ambient helpers: logging, IDs, errors, config
// and database access
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w, with timestamps and caller
// reporting enabled. A nil writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
}

// GenerateID generates a new v4 [uuid.UUID] as a string. Playlist and track
// rows use these as primary keys.
func GenerateID() string {
	return uuid.New().String()
}
