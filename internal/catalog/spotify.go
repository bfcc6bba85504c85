// Spotify Web API implementation of [Source]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/philipp-eisen/song-game/internal/shared"
	"golang.org/x/oauth2"
)

const defaultSpotifyBaseURL = "https://api.spotify.com/v1"

// spotifyImage represents an image resource.
type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyExternalIDs struct {
	ISRC string `json:"isrc"`
}

// spotifyTrack represents a Spotify track.
type spotifyTrack struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Artists     []spotifyArtist    `json:"artists"`
	Album       spotifyAlbum       `json:"album"`
	ExternalIDs spotifyExternalIDs `json:"external_ids"`
}

type spotifyPlaylistItem struct {
	Track spotifyTrack `json:"track"`
}

// spotifyPlaylist represents a Spotify playlist with embedded first page of tracks.
type spotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []spotifyImage `json:"images"`
	Tracks      struct {
		Total int                   `json:"total"`
		Items []spotifyPlaylistItem `json:"items"`
		Next  *string               `json:"next"`
	} `json:"tracks"`
}

type spotifyPaginatedItems struct {
	Items []spotifyPlaylistItem `json:"items"`
	Next  *string               `json:"next"`
}

// SpotifySource implements [Source] for the Spotify Web API.
//
// Authentication uses a pre-obtained access token via [oauth2]; token
// acquisition and refresh belong to the caller.
type SpotifySource struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifySource creates a new Spotify source client with the given access token.
func NewSpotifySource(baseURL, accessToken string, client *http.Client) *SpotifySource {
	if baseURL == "" {
		baseURL = defaultSpotifyBaseURL
	}
	if client == nil {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		client = oauth2.NewClient(context.Background(), src)
	}

	return &SpotifySource{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// doRequest performs an authenticated GET against the Spotify API.
func (s *SpotifySource) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := endpoint
	if len(endpoint) == 0 || endpoint[0] == '/' {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: spotify status %d", shared.ErrPlaylistNotFound, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Playlist fetches a playlist with all its tracks, following pagination.
func (s *SpotifySource) Playlist(ctx context.Context, playlistID string) (*SourcePlaylist, error) {
	var sp spotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	if err := s.doRequest(ctx, endpoint, &sp); err != nil {
		return nil, err
	}

	playlist := &SourcePlaylist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
	}

	if len(sp.Images) > 0 {
		playlist.ImageURL = sp.Images[0].URL
	}

	items := sp.Tracks.Items
	next := sp.Tracks.Next

	for next != nil {
		var page spotifyPaginatedItems
		if err := s.doRequest(ctx, *next, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		next = page.Next
	}

	playlist.Tracks = make([]SourceTrack, 0, len(items))
	for _, item := range items {
		playlist.Tracks = append(playlist.Tracks, trackToSource(item.Track))
	}

	return playlist, nil
}

// trackToSource maps a Spotify track to a [SourceTrack].
func trackToSource(track spotifyTrack) SourceTrack {
	src := SourceTrack{
		Title:       track.Name,
		ISRC:        track.ExternalIDs.ISRC,
		ReleaseYear: spotifyReleaseYear(track.Album.ReleaseDate),
	}

	if len(track.Artists) > 0 {
		src.Artist = track.Artists[0].Name
	}

	return src
}

// spotifyReleaseYear parses the year from a release date that may be
// "2004", "2004-11" or "2004-11-16" depending on release_date_precision.
func spotifyReleaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
