// Package docstore provides the MongoDB-backed material document store.
//
// Two logical collections exist: in-stock inventory and the full FDA
// catalog. Lookups are exposed per collection; searching both is the
// orchestrator's job.
package docstore
