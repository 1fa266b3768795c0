// Package server exposes the search service over HTTP.
//
//	POST /search                      start a search job
//	GET  /search/{id}                 job status and top candidates
//	GET  /events/{id}                 job events as text/event-stream
//	GET  /candidate/{id}              candidate detail
//	POST /candidate/{id}/social       set the candidate's social handle
//	GET  /candidate/{id}/posts        stored posts, newest first
//	POST /candidate/{id}/posts        ingest posts supplied in the body
//	POST /candidate/{id}/posts/fetch  ingest posts from the social source
//	GET  /candidate/{id}/retrieve     posts most similar to ?q=
//	POST /candidate/{id}/chat         answer a question as the candidate
//
// Errors are JSON objects with a single "detail" field.
package server
