// Package server exposes the unified material search over HTTP. One route
// does the work (POST /api/search); /healthz reports backing-store health
// for orchestration probes.
package server
