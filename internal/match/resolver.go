package match

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/philipp-eisen/song-game/internal/catalog"
	"github.com/philipp-eisen/song-game/internal/shared"
)

// searchLimit is the number of ranked candidates requested per text search.
const searchLimit = 5

// Unmatched reasons persisted on tracks.
const (
	ReasonSearchFailed = "Search failed"
	ReasonNoResults    = "No results found"
)

// Query describes one track to resolve against the target catalog.
type Query struct {
	Title      string
	Artist     string
	ISRC       string
	Storefront string
}

// Outcome is the result of resolving a single query: either a catalog match
// or a terminal reason the track stays unmatched.
type Outcome struct {
	Match  *catalog.Match
	Reason string
}

// Matched reports whether the outcome carries a catalog match.
func (o Outcome) Matched() bool {
	return o.Match != nil
}

// Resolver resolves track queries using an injected catalog lookup capability.
type Resolver struct {
	catalog catalog.Catalog
	logger  *log.Logger
}

// NewResolver creates a Resolver backed by the given catalog.
func NewResolver(c catalog.Catalog, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{catalog: c, logger: logger}
}

// Resolve runs the matching strategy for one track, short-circuiting on the
// first success:
//
//  1. ISRC exact lookup when the identifier is present. A lookup error is a
//     soft failure: it is logged and treatment falls through to search.
//  2. Text search "{title} {artist}" for the top ranked candidates. A search
//     error or an empty result set is terminal for the track.
//  3. First candidate whose normalized title and artist are both Similar to
//     the input wins.
//  4. Otherwise the first-ranked candidate is accepted as a best guess. Low
//     similarity alone never leaves a track unmatched; that is a deliberate
//     policy, not a missing check.
func (r *Resolver) Resolve(ctx context.Context, q Query) Outcome {
	if q.ISRC != "" {
		m, err := r.catalog.LookupISRC(ctx, q.ISRC, q.Storefront)
		if err != nil {
			r.logger.Warn("isrc lookup failed, falling back to search", "isrc", q.ISRC, "err", err)
		} else if m != nil {
			return Outcome{Match: m}
		}
	}

	query := fmt.Sprintf("%s %s", q.Title, q.Artist)

	candidates, err := r.catalog.Search(ctx, query, q.Storefront, searchLimit)
	if err != nil {
		r.logger.Warn("catalog search failed", "query", query, "err", err)
		return Outcome{Reason: ReasonSearchFailed}
	}
	if len(candidates) == 0 {
		return Outcome{Reason: ReasonNoResults}
	}

	title := Normalize(q.Title)
	artist := Normalize(q.Artist)

	for i := range candidates {
		c := &candidates[i]
		if Similar(title, Normalize(c.Title)) && Similar(artist, Normalize(c.ArtistName)) {
			return Outcome{Match: c}
		}
	}

	return Outcome{Match: &candidates[0]}
}
