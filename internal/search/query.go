package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	// DefaultLimit is used when the caller passes a non-positive limit.
	DefaultLimit = 20
	// MaxLimit caps how many hits a single search may return.
	MaxLimit = 100
)

// Result holds the hits for one query, best first.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is a single matching book.
type Hit struct {
	ISBN   string  `json:"isbn"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Score  float64 `json:"score"`
}

// Search runs q against titles and authors.
func (s *SearchIndex) Search(ctx context.Context, q string, limit int) (*Result, error) {
	q = strings.TrimSpace(q)
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	result := &Result{Query: q, Hits: []Hit{}}
	if q == "" {
		return result, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.Fields = []string{fieldISBN, fieldTitle, fieldAuthor}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = res.Total
	for _, h := range res.Hits {
		hit := Hit{ISBN: h.ID, Score: h.Score}
		if v, ok := h.Fields[fieldTitle].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields[fieldAuthor].(string); ok {
			hit.Author = v
		}
		result.Hits = append(result.Hits, hit)
	}

	return result, nil
}

// buildQuery ORs analyzed matches with fuzzy and prefix variants so typos
// and partial words still find something. Title matches rank highest.
func buildQuery(q string) query.Query {
	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField(fieldTitle)
	titleMatch.SetBoost(3.0)

	authorMatch := bleve.NewMatchQuery(q)
	authorMatch.SetField(fieldAuthor)
	authorMatch.SetBoost(2.0)

	queries := []query.Query{titleMatch, authorMatch}

	lower := strings.ToLower(q)
	if !strings.ContainsAny(lower, " \t") {
		titleFuzzy := bleve.NewFuzzyQuery(lower)
		titleFuzzy.SetField(fieldTitle)
		titleFuzzy.SetFuzziness(1)
		titleFuzzy.SetBoost(0.8)

		authorFuzzy := bleve.NewFuzzyQuery(lower)
		authorFuzzy.SetField(fieldAuthor)
		authorFuzzy.SetFuzziness(1)
		authorFuzzy.SetBoost(0.8)

		queries = append(queries, titleFuzzy, authorFuzzy)

		if len(lower) >= 2 {
			titlePrefix := bleve.NewPrefixQuery(lower)
			titlePrefix.SetField(fieldTitle)
			titlePrefix.SetBoost(0.5)

			authorPrefix := bleve.NewPrefixQuery(lower)
			authorPrefix.SetField(fieldAuthor)
			authorPrefix.SetBoost(0.5)

			queries = append(queries, titlePrefix, authorPrefix)
		}
	}

	return bleve.NewDisjunctionQuery(queries...)
}
