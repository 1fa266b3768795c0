// Package scoring ranks candidates with a fixed linear combination of
// topical fit, impact, recency and seniority fit.
//
// Every intermediate term is returned in a core.ScoreBreakdown so callers
// can explain a ranking without recomputing it.
package scoring
