// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the AI services talentscout uses.
//
// The package is designed around four interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - TopicExtractor: Summarizes publications into topics
//   - ChatCompleter: Answers a conversation
//   - AIProvider: Aggregates the services for convenient initialization
//
// # Implementation Packages
//
//   - ai/hashing: Deterministic bag-of-words hashing embedder and vector math
//   - ai/keywords: Keyword frequency topics, used offline and as a fallback
//   - ai/openai: Implementation on OpenAI-compatible APIs (OpenRouter, Ollama, ...)
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors return interface types; mock constructors return
// concrete types so tests can inject behavior and count calls.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithAPIKey(key)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "graph neural networks")
//	topics, err := provider.TopicExtractor().ExtractTopics(ctx, abstracts, 8)
package ai
