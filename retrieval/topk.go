package retrieval

import (
	"cmp"
	"slices"
	"time"

	"github.com/poiesic/talentscout/ai/hashing"
	"github.com/poiesic/talentscout/core"
)

// Item is an embedded piece of text.
type Item struct {
	ID        core.ID
	Ref       string // platform post id, or a line reference for inline texts
	Text      string
	CreatedAt time.Time
	Vector    []float32
}

// Hit is an item with its similarity to the query.
type Hit struct {
	Item
	Score float64
}

// TopK returns the k items most similar to query, most similar first. Items
// with equal similarity keep their input order.
func TopK(items []Item, query []float32, k int) ([]Hit, error) {
	if k <= 0 || len(items) == 0 {
		return []Hit{}, nil
	}
	hits := make([]Hit, len(items))
	for i, item := range items {
		score, err := hashing.Cosine(item.Vector, query)
		if err != nil {
			return nil, err
		}
		hits[i] = Hit{Item: item, Score: score}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hits[:min(k, len(hits))], nil
}
