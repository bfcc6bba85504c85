package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/library"
	"github.com/philipp-eisen/song-game/internal/models"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// LibraryHandler serves the playlist read endpoints:
//
//	GET /api/playlists?owner={ownerID}   playlists of an owner
//	GET /api/playlists/{id}[?all=true]   one playlist with its tracks
//
// Listings include only ready tracks unless all=true is set.
type LibraryHandler struct {
	reader *library.Reader
	logger *log.Logger
}

// NewLibraryHandler creates a LibraryHandler over the given reader.
func NewLibraryHandler(reader *library.Reader, logger *log.Logger) *LibraryHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryHandler{reader: reader, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *LibraryHandler) Routes() []string {
	return []string{"/api/playlists", "/api/playlists/"}
}

// ServeHTTP dispatches between the list and detail endpoints.
func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/playlists")
	id = strings.Trim(id, "/")

	if id == "" {
		h.list(w, r)
		return
	}
	if strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.detail(w, r, id)
}

func (h *LibraryHandler) list(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	playlists, err := h.reader.ListOwned(owner)
	if err != nil {
		h.logger.Error("failed to list playlists", "owner", owner, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

func (h *LibraryHandler) detail(w http.ResponseWriter, r *http.Request, id string) {
	includeAll := r.URL.Query().Get("all") == "true"

	detail, err := h.reader.Get(id, includeAll)
	if err != nil {
		h.logger.Error("failed to get playlist", "playlist", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

// ServeHTTP writes a static liveness response.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter assembles the read API router with logging middleware.
func NewRouter(reader *library.Reader, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Logging(logger))
	router.Handler(NewLibraryHandler(reader, logger))
	router.Handler(&HealthHandler{})
	return router
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// PlaylistsResponse is the decoded shape of the list endpoint, for
// consumers that poll import status over HTTP.
type PlaylistsResponse struct {
	Playlists []*models.Playlist `json:"playlists"`
}
