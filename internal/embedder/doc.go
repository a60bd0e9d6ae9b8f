// Package embedder converts material text into vector embeddings for
// semantic search.
//
// Two real providers are supported: Gemini (batchEmbedContents REST API,
// the default) and OpenAI. A deterministic local provider exists for tests
// and offline development and must be requested explicitly. When the
// configured provider cannot be constructed, the factory falls through the
// remaining real providers before giving up.
//
// Batch requests larger than the provider ceiling are chunked internally.
// A failed sub-batch is dropped and reported by index rather than failing
// the whole batch. Embeddings are cached in-process by content hash with
// LRU eviction.
package embedder
