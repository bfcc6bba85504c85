package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppleMusicService_LookupISRC(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/catalog/us/songs" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("filter[isrc]"); got != "USUM71703861" {
				t.Errorf("unexpected isrc filter: %s", got)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer devtoken" {
				t.Errorf("unexpected authorization header: %s", auth)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"data": [{
					"id": "1440881047",
					"type": "songs",
					"attributes": {
						"name": "HUMBLE.",
						"artistName": "Kendrick Lamar",
						"albumName": "DAMN.",
						"releaseDate": "2017-03-30",
						"isrc": "USUM71703861",
						"previews": [{"url": "https://audio.example.com/humble.m4a"}],
						"artwork": {"url": "https://art.example.com/{w}x{h}bb.jpg", "width": 3000, "height": 3000}
					}
				}]
			}`))
		}))
		defer server.Close()

		svc := NewAppleMusicService(server.URL, "devtoken", nil)

		match, err := svc.LookupISRC(context.Background(), "USUM71703861", "us")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if match == nil {
			t.Fatal("expected a match")
		}

		if match.CatalogID != "1440881047" {
			t.Errorf("expected catalog ID 1440881047, got %s", match.CatalogID)
		}
		if match.ReleaseYear != 2017 {
			t.Errorf("expected release year 2017, got %d", match.ReleaseYear)
		}
		if match.PreviewURL != "https://audio.example.com/humble.m4a" {
			t.Errorf("unexpected preview URL: %s", match.PreviewURL)
		}
		if match.ArtworkURL != "https://art.example.com/640x640bb.jpg" {
			t.Errorf("expected artwork template substitution, got %s", match.ArtworkURL)
		}
	})

	t.Run("no entry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data": []}`))
		}))
		defer server.Close()

		svc := NewAppleMusicService(server.URL, "devtoken", nil)

		match, err := svc.LookupISRC(context.Background(), "UNKNOWN", "us")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if match != nil {
			t.Errorf("expected no match, got %+v", match)
		}
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewAppleMusicService(server.URL, "devtoken", nil)

		if _, err := svc.LookupISRC(context.Background(), "USUM71703861", "us"); err == nil {
			t.Error("expected error for server failure")
		}
	})
}

func TestAppleMusicService_Search(t *testing.T) {
	t.Run("ranked results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/catalog/us/search" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("term"); got != "HUMBLE. Kendrick Lamar" {
				t.Errorf("unexpected search term: %s", got)
			}
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("unexpected limit: %s", got)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"results": {
					"songs": {
						"data": [
							{"id": "1", "attributes": {"name": "HUMBLE.", "artistName": "Kendrick Lamar", "releaseDate": "2017-03-30"}},
							{"id": "2", "attributes": {"name": "HUMBLE. (Remix)", "artistName": "Kendrick Lamar"}}
						]
					}
				}
			}`))
		}))
		defer server.Close()

		svc := NewAppleMusicService(server.URL, "devtoken", nil)

		matches, err := svc.Search(context.Background(), "HUMBLE. Kendrick Lamar", "us", 5)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(matches))
		}
		if matches[0].CatalogID != "1" {
			t.Errorf("expected first-ranked match first, got %s", matches[0].CatalogID)
		}
	})

	t.Run("empty results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": {}}`))
		}))
		defer server.Close()

		svc := NewAppleMusicService(server.URL, "devtoken", nil)

		matches, err := svc.Search(context.Background(), "nothing at all", "us", 5)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("expected no matches, got %d", len(matches))
		}
	})
}

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2017-03-30", 2017},
		{"1999", 1999},
		{"", 0},
		{"bad", 0},
	}

	for _, tc := range cases {
		if got := releaseYear(tc.date); got != tc.want {
			t.Errorf("releaseYear(%q) = %d, want %d", tc.date, got, tc.want)
		}
	}
}
