// Package indexer builds the vector index from the material catalog. One
// run loads a collection from the document store, chunks every material,
// embeds the chunks in provider-sized batches and upserts the vectors into
// the collection's namespace. Batches run concurrently under a bounded
// worker limit.
package indexer
