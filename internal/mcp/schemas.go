package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchMaterialsTool returns the tool definition for search_materials
func searchMaterialsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_materials",
		Description: "Search the cosmetics raw-material catalog with free text (Thai or English), a material code, a trade name, or benefit keywords. Returns ranked matches with availability and a markdown table.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query, e.g. 'RM000123', 'Sepimax Zen', or 'หาสารที่ช่วยความชุ่มชื้น'",
				},
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Restrict the search scope; omit to let the router decide",
					"enum":        []string{"in_stock", "all_fda", "both"},
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
				"similarity_threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity for semantic matches (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Drop results scoring below this value (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"enable_semantic_search": map[string]interface{}{
					"type":        "boolean",
					"description": "If false, skip the vector-store strategy",
					"default":     true,
				},
				"filter_by": map[string]interface{}{
					"type":        "object",
					"description": "Structured post-filters over document fields",
					"properties": map[string]interface{}{
						"benefit": map[string]interface{}{
							"type":        "string",
							"description": "Keep only materials carrying this benefit tag",
						},
						"supplier": map[string]interface{}{
							"type":        "string",
							"description": "Keep only materials from this supplier (substring match)",
						},
						"max_cost": map[string]interface{}{
							"type":        "number",
							"description": "Keep only materials at or below this cost per unit",
						},
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// getIndexStatusTool returns the tool definition for get_index_status
func getIndexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_index_status",
		Description: "Report catalog document counts and vector-index occupancy per namespace",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
