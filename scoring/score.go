package scoring

import (
	"math"
	"strings"

	"github.com/poiesic/talentscout/core"
)

// Weights of the total score. They sum to 1.
const (
	WeightFit       = 0.45
	WeightImpact    = 0.30
	WeightRecency   = 0.15
	WeightSeniority = 0.10
)

// DefaultWeights is recorded in every breakdown.
var DefaultWeights = core.ScoreWeights{
	Fit:       WeightFit,
	Impact:    WeightImpact,
	Recency:   WeightRecency,
	Seniority: WeightSeniority,
}

const (
	citationCeiling = 500
	hProxyCeiling   = 80
	recencyWindow   = 15
)

// Normalize clamps v to [lo, hi] and maps it linearly onto [0, 1].
// A degenerate range yields 0.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	v = math.Max(lo, math.Min(hi, v))
	return (v - lo) / (hi - lo)
}

// TopicalFit is the share of distinct query keywords found among the
// candidate topics, compared case-insensitively.
func TopicalFit(queryKeywords, topics []string) float64 {
	if len(queryKeywords) == 0 || len(topics) == 0 {
		return 0
	}
	q := lowerSet(queryKeywords)
	t := lowerSet(topics)
	shared := 0
	for k := range q {
		if t[k] {
			shared++
		}
	}
	return float64(shared) / float64(max(1, len(q)))
}

func lowerSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// CompositeFit averages keyword fit and embedding similarity. Negative
// similarity counts as no similarity.
func CompositeFit(topicalFit, similarity float64) float64 {
	return 0.5*topicalFit + 0.5*math.Max(0, math.Min(1, similarity))
}

// HProxy approximates an h-index from aggregate counts. It is not a real
// h-index.
func HProxy(worksCount, citedByCount int) float64 {
	return math.Min(math.Pow(float64(max(0, worksCount)), 0.5), math.Pow(float64(max(0, citedByCount)), 0.4))
}

// Impact combines the best single citation count with the h proxy.
func Impact(bestCitations int, hProxy float64) float64 {
	return 0.7*Normalize(float64(bestCitations), 0, citationCeiling) + 0.3*Normalize(hProxy, 0, hProxyCeiling)
}

// Recency scores the most recent publication year against a fifteen year
// window ending at currentYear. Undated work (year 0) scores 0.
func Recency(recentYear, currentYear int) float64 {
	if recentYear <= 0 {
		return 0
	}
	return Normalize(float64(recentYear), float64(currentYear-recencyWindow), float64(currentYear))
}

// Input holds everything needed to score one candidate.
type Input struct {
	QueryKeywords       []string
	Topics              []string
	EmbeddingSimilarity float64
	BestCitations       int
	WorksCount          int
	CitedByCount        int
	RecentYear          int // 0 when no dated publications
	YearsActive         int
	RequestedLevel      Level
	CurrentYear         int
}

// Score computes the composite score and its breakdown.
func Score(in Input) core.ScoreBreakdown {
	b := core.ScoreBreakdown{
		TopicalFit:          TopicalFit(in.QueryKeywords, in.Topics),
		EmbeddingSimilarity: in.EmbeddingSimilarity,
		BestCitations:       in.BestCitations,
		HProxy:              HProxy(in.WorksCount, in.CitedByCount),
		RecentYear:          in.RecentYear,
		RequestedLevel:      in.RequestedLevel,
		Weights:             DefaultWeights,
	}
	b.CompositeFit = CompositeFit(b.TopicalFit, b.EmbeddingSimilarity)
	b.Impact = Impact(b.BestCitations, b.HProxy)
	b.Recency = Recency(in.RecentYear, in.CurrentYear)
	b.Seniority = Classify(in.YearsActive, b.HProxy, in.WorksCount)
	b.SeniorityFit = Fit(b.Seniority, in.RequestedLevel)
	b.Total = WeightFit*b.CompositeFit +
		WeightImpact*b.Impact +
		WeightRecency*b.Recency +
		WeightSeniority*b.SeniorityFit
	return b
}

// BestCitations returns the highest citation count among works.
func BestCitations(works []core.Work) int {
	best := 0
	for _, w := range works {
		best = max(best, w.Citations)
	}
	return best
}

// RecentYear returns the latest publication year, or 0 if nothing is dated.
func RecentYear(works []core.Work) int {
	recent := 0
	for _, w := range works {
		recent = max(recent, w.Year)
	}
	return recent
}
