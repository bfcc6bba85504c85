package match

import (
	"context"
	"errors"
	"testing"

	"github.com/philipp-eisen/song-game/internal/catalog"
)

// fakeCatalog is a scriptable [catalog.Catalog] test double.
type fakeCatalog struct {
	lookupMatch *catalog.Match
	lookupErr   error
	searchOut   []catalog.Match
	searchErr   error

	lookupCalls int
	searchCalls int
}

func (f *fakeCatalog) LookupISRC(ctx context.Context, isrc, storefront string) (*catalog.Match, error) {
	f.lookupCalls++
	return f.lookupMatch, f.lookupErr
}

func (f *fakeCatalog) Search(ctx context.Context, query, storefront string, limit int) ([]catalog.Match, error) {
	f.searchCalls++
	return f.searchOut, f.searchErr
}

func TestResolver_ISRCAuthoritative(t *testing.T) {
	fake := &fakeCatalog{
		lookupMatch: &catalog.Match{CatalogID: "cat1", Title: "Song", ArtistName: "Artist"},
	}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{
		Title: "Song", Artist: "Artist", ISRC: "USTEST1234567", Storefront: "us",
	})

	if !outcome.Matched() {
		t.Fatalf("expected a match, got reason %q", outcome.Reason)
	}
	if outcome.Match.CatalogID != "cat1" {
		t.Errorf("expected catalog ID cat1, got %s", outcome.Match.CatalogID)
	}
	if fake.searchCalls != 0 {
		t.Errorf("search should never run after an ISRC hit, ran %d times", fake.searchCalls)
	}
}

func TestResolver_ISRCErrorFallsThroughToSearch(t *testing.T) {
	fake := &fakeCatalog{
		lookupErr: errors.New("catalog unavailable"),
		searchOut: []catalog.Match{{CatalogID: "cat2", Title: "Song", ArtistName: "Artist"}},
	}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{
		Title: "Song", Artist: "Artist", ISRC: "USTEST1234567", Storefront: "us",
	})

	if !outcome.Matched() {
		t.Fatalf("expected a match via search fallback, got reason %q", outcome.Reason)
	}
	if fake.searchCalls != 1 {
		t.Errorf("expected 1 search call, got %d", fake.searchCalls)
	}
}

func TestResolver_NoISRCSkipsLookup(t *testing.T) {
	fake := &fakeCatalog{
		searchOut: []catalog.Match{{CatalogID: "cat3", Title: "Song", ArtistName: "Artist"}},
	}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{Title: "Song", Artist: "Artist", Storefront: "us"})

	if !outcome.Matched() {
		t.Fatalf("expected a match, got reason %q", outcome.Reason)
	}
	if fake.lookupCalls != 0 {
		t.Errorf("lookup should not run without an ISRC, ran %d times", fake.lookupCalls)
	}
}

func TestResolver_SearchErrorIsTerminal(t *testing.T) {
	fake := &fakeCatalog{searchErr: errors.New("boom")}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{Title: "Song", Artist: "Artist", Storefront: "us"})

	if outcome.Matched() {
		t.Fatal("expected no match on search error")
	}
	if outcome.Reason != ReasonSearchFailed {
		t.Errorf("expected reason %q, got %q", ReasonSearchFailed, outcome.Reason)
	}
}

func TestResolver_ZeroResults(t *testing.T) {
	fake := &fakeCatalog{searchOut: []catalog.Match{}}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{Title: "Song", Artist: "Artist", Storefront: "us"})

	if outcome.Matched() {
		t.Fatal("expected no match for zero results")
	}
	if outcome.Reason != ReasonNoResults {
		t.Errorf("expected reason %q, got %q", ReasonNoResults, outcome.Reason)
	}
}

func TestResolver_SimilarityScanPicksFirstPassing(t *testing.T) {
	fake := &fakeCatalog{
		searchOut: []catalog.Match{
			{CatalogID: "wrong", Title: "Completely Different", ArtistName: "Someone Else"},
			{CatalogID: "right", Title: "My Song (Remastered)", ArtistName: "The Artist"},
			{CatalogID: "also right", Title: "My Song", ArtistName: "The Artist"},
		},
	}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{Title: "My Song", Artist: "Artist", Storefront: "us"})

	if !outcome.Matched() {
		t.Fatalf("expected a match, got reason %q", outcome.Reason)
	}
	if outcome.Match.CatalogID != "right" {
		t.Errorf("expected first passing candidate in rank order, got %s", outcome.Match.CatalogID)
	}
}

func TestResolver_BestGuessFallback(t *testing.T) {
	fake := &fakeCatalog{
		searchOut: []catalog.Match{
			{CatalogID: "top", Title: "Unrelated One", ArtistName: "Nobody"},
			{CatalogID: "second", Title: "Unrelated Two", ArtistName: "Nobody Else"},
			{CatalogID: "third", Title: "Unrelated Three", ArtistName: "Somebody"},
			{CatalogID: "fourth", Title: "Unrelated Four", ArtistName: "Anybody"},
			{CatalogID: "fifth", Title: "Unrelated Five", ArtistName: "Everybody"},
		},
	}
	resolver := NewResolver(fake, nil)

	outcome := resolver.Resolve(context.Background(), Query{Title: "My Song", Artist: "The Artist", Storefront: "us"})

	if !outcome.Matched() {
		t.Fatalf("low similarity must not unmatch a track, got reason %q", outcome.Reason)
	}
	if outcome.Match.CatalogID != "top" {
		t.Errorf("expected first-ranked best guess, got %s", outcome.Match.CatalogID)
	}
}
