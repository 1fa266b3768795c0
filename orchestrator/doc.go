// Package orchestrator runs search jobs: discover authors, enrich and score
// each one, persist the results and publish progress on the event registry.
//
// Jobs run on an ants pool, one task per job. Candidates within a job are
// processed strictly in discovery order; the first failure aborts the job
// and leaves everything already persisted in place.
package orchestrator
