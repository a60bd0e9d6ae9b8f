// Package mcp exposes material search over the Model Context Protocol so
// LLM agents can call it as a tool. Two tools are registered:
// search_materials wraps the unified search pipeline, get_index_status
// reports catalog and vector-index occupancy.
package mcp
