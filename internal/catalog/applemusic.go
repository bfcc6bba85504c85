// Apple Music catalog implementation of [Catalog]
//
// Response types based on https://developer.apple.com/documentation/applemusicapi
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/philipp-eisen/song-game/internal/shared"
)

const defaultAppleMusicBaseURL = "https://api.music.apple.com"

// artworkSize is substituted into the {w}x{h} artwork URL template.
const artworkSize = 640

// appleMusicArtwork represents an artwork resource with a size template URL.
type appleMusicArtwork struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type appleMusicPreview struct {
	URL string `json:"url"`
}

// appleMusicSongAttributes represents the attributes of a catalog song.
type appleMusicSongAttributes struct {
	Name        string              `json:"name"`
	ArtistName  string              `json:"artistName"`
	AlbumName   string              `json:"albumName"`
	ReleaseDate string              `json:"releaseDate"`
	ISRC        string              `json:"isrc"`
	Previews    []appleMusicPreview `json:"previews"`
	Artwork     appleMusicArtwork   `json:"artwork"`
	URL         string              `json:"url"`
}

// appleMusicSong represents a song resource in the catalog.
type appleMusicSong struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Attributes appleMusicSongAttributes `json:"attributes"`
}

type appleMusicSongsResponse struct {
	Data []appleMusicSong `json:"data"`
}

type appleMusicSearchResponse struct {
	Results struct {
		Songs struct {
			Data []appleMusicSong `json:"data"`
		} `json:"songs"`
	} `json:"results"`
}

// AppleMusicService implements [Catalog] against the Apple Music API.
//
// Requests authenticate with a developer token; the storefront partitions
// the catalog per region and is supplied per call.
type AppleMusicService struct {
	baseURL        string
	developerToken string
	httpClient     *http.Client
}

// NewAppleMusicService creates a new Apple Music catalog client.
func NewAppleMusicService(baseURL, developerToken string, client *http.Client) *AppleMusicService {
	if baseURL == "" {
		baseURL = defaultAppleMusicBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AppleMusicService{
		baseURL:        baseURL,
		developerToken: developerToken,
		httpClient:     client,
	}
}

// doRequest performs an authenticated GET against the Apple Music API.
func (a *AppleMusicService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := a.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.developerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: apple music status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// LookupISRC looks up a song by ISRC in the given storefront.
//
// Calls GET /v1/catalog/{storefront}/songs?filter[isrc]={isrc}.
// Returns (nil, nil) when the catalog has no entry for the identifier.
func (a *AppleMusicService) LookupISRC(ctx context.Context, isrc, storefront string) (*Match, error) {
	endpoint := fmt.Sprintf("/v1/catalog/%s/songs?filter[isrc]=%s", url.PathEscape(storefront), url.QueryEscape(isrc))

	var response appleMusicSongsResponse
	if err := a.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if len(response.Data) == 0 {
		return nil, nil
	}

	match := songToMatch(response.Data[0])
	return &match, nil
}

// Search runs a text search in the given storefront and returns up to limit
// songs in ranked order.
//
// Calls GET /v1/catalog/{storefront}/search?term={query}&types=songs&limit={limit}.
func (a *AppleMusicService) Search(ctx context.Context, query, storefront string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 25 {
		limit = 25
	}

	endpoint := fmt.Sprintf("/v1/catalog/%s/search?term=%s&types=songs&limit=%d",
		url.PathEscape(storefront), url.QueryEscape(query), limit)

	var response appleMusicSearchResponse
	if err := a.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(response.Results.Songs.Data))
	for _, song := range response.Results.Songs.Data {
		matches = append(matches, songToMatch(song))
	}

	return matches, nil
}

// songToMatch maps an Apple Music song resource to a [Match].
func songToMatch(song appleMusicSong) Match {
	attrs := song.Attributes

	match := Match{
		CatalogID:   song.ID,
		Title:       attrs.Name,
		ArtistName:  attrs.ArtistName,
		AlbumName:   attrs.AlbumName,
		ReleaseDate: attrs.ReleaseDate,
		ReleaseYear: releaseYear(attrs.ReleaseDate),
		ISRC:        attrs.ISRC,
		ArtworkURL:  artworkURL(attrs.Artwork),
	}

	if len(attrs.Previews) > 0 {
		match.PreviewURL = attrs.Previews[0].URL
	}

	return match
}

// releaseYear parses the year out of an Apple Music release date
// ("2004-11-16" or just "2004").
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// artworkURL substitutes concrete dimensions into the {w}x{h} template.
func artworkURL(artwork appleMusicArtwork) string {
	if artwork.URL == "" {
		return ""
	}
	size := strconv.Itoa(artworkSize)
	replaced := strings.ReplaceAll(artwork.URL, "{w}", size)
	return strings.ReplaceAll(replaced, "{h}", size)
}
