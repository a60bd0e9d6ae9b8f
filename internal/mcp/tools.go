package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/labhouse/matsearch/internal/searcher"
	"github.com/labhouse/matsearch/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleSearchMaterials handles the search_materials tool invocation
func (s *Server) handleSearchMaterials(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	req := searcher.Request{Query: query}

	if col := getStringDefault(args, "collection", ""); col != "" {
		req.Collection = types.Collection(col)
		if err := types.ValidateCollection(req.Collection); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid collection", map[string]interface{}{
				"param":   "collection",
				"value":   col,
				"allowed": []string{"in_stock", "all_fda", "both"},
			})
		}
	}

	if topK, ok := getInt(args, "top_k"); ok {
		if topK < 1 || topK > searcher.MaxTopK {
			return nil, newMCPError(ErrorCodeInvalidParams,
				fmt.Sprintf("top_k must be between 1 and %d", searcher.MaxTopK), map[string]interface{}{
					"param": "top_k",
					"value": topK,
				})
		}
		req.TopK = &topK
	}
	if threshold, ok := getFloat(args, "similarity_threshold"); ok {
		req.SimilarityThreshold = &threshold
	}
	if minScore, ok := getFloat(args, "min_score"); ok {
		req.MinScore = minScore
	}
	if enable, ok := args["enable_semantic_search"].(bool); ok {
		req.EnableSemantic = &enable
	}

	if rawFilter, ok := args["filter_by"].(map[string]interface{}); ok {
		filter := &searcher.FilterBy{
			Benefit:  getStringDefault(rawFilter, "benefit", ""),
			Supplier: getStringDefault(rawFilter, "supplier", ""),
		}
		if maxCost, ok := getFloat(rawFilter, "max_cost"); ok {
			filter.MaxCost = maxCost
		}
		req.FilterBy = filter
	}

	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		if resp != nil && resp.Formatted != "" {
			// Validation and total-failure responses still carry a
			// human-readable message; surface it instead of a bare error.
			return mcp.NewToolResultText(marshalResponse(resp)), nil
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(marshalResponse(resp)), nil
}

// handleGetIndexStatus handles the get_index_status tool invocation
func (s *Server) handleGetIndexStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{}

	collections := map[string]interface{}{}
	for _, col := range []types.Collection{types.CollectionInStock, types.CollectionAllFDA} {
		count, err := s.docs.Count(ctx, col)
		if err != nil {
			collections[string(col)] = map[string]interface{}{"error": err.Error()}
			continue
		}
		collections[string(col)] = map[string]interface{}{"documents": count}
	}
	response["collections"] = collections

	if s.vectors == nil {
		response["vector_index"] = map[string]interface{}{"available": false}
	} else if stats, err := s.vectors.Stats(ctx); err != nil {
		response["vector_index"] = map[string]interface{}{
			"available": false,
			"error":     err.Error(),
		}
	} else {
		response["vector_index"] = map[string]interface{}{
			"available":   true,
			"dimension":   stats.Dimension,
			"total_count": stats.TotalVectorCount,
			"namespaces":  stats.Namespaces,
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func marshalResponse(resp *searcher.Response) string {
	bytes, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return resp.Formatted
	}
	return string(bytes)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getInt extracts an integer parameter; JSON numbers arrive as float64.
func getInt(args map[string]interface{}, key string) (int, bool) {
	if val, ok := args[key].(float64); ok {
		return int(val), true
	}
	return 0, false
}

func getFloat(args map[string]interface{}, key string) (float64, bool) {
	if val, ok := args[key].(float64); ok {
		return val, true
	}
	return 0, false
}
