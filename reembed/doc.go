// Package reembed recomputes the embeddings of every stored social post
// with the configured embedder, for example after the embedding dimension
// or model changed.
//
// Posts are processed in batches; embedding calls are retried with
// exponential backoff and progress is written to a caller supplied writer.
package reembed
