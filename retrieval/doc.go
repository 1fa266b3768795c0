// Package retrieval finds the posts most relevant to a question and answers
// questions in a candidate's voice.
//
// Retrieval is brute force: the query is compared against every vector in
// the corpus. It is meant for a few thousand items per candidate.
//
// A Chatter resolves its corpus through an ordered list of strategies. The
// first strategy that returns hits wins:
//
//	StoredPosts  posts already ingested for the candidate
//	SocialAPI    posts fetched from the social platform, ingested on the fly
//	InlineTexts  texts supplied with the request, never persisted
package retrieval
