// Package searcher is the unified search orchestrator. One call classifies
// the query, routes it to collections, fans out the document-store and
// semantic retrieval legs concurrently, then merges, filters, ranks and
// formats the results.
//
// Degradation policy: a failed strategy is skipped and reported in the
// response warning as long as at least one other strategy produced results.
// Only input validation, dimension mismatches and total strategy failure
// surface as errors.
package searcher
