// Package ingestion stores a candidate's social posts and indexes them for
// retrieval.
//
// The Pipeline type manages the ingestion workflow for posts, including:
//   - Adding posts to storage, skipping ones already known by platform id
//   - Embedding new posts in batches on a worker pool
//   - Persisting one post embedding record per new post
//
// Ingest returns once every batch has been embedded and stored, so posts
// are retrievable as soon as it succeeds.
package ingestion
