// Package types defines the shared domain types for the material search
// service: the canonical MaterialDocument both backing collections normalize
// into, the chunk taxonomy used at indexing time, and the unified search
// result shape returned to callers.
//
// The package has no dependencies on storage or transport code so that any
// layer (document store, vector store, search core, HTTP/MCP boundaries) can
// use it without import cycles.
package types
