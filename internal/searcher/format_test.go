package searcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labhouse/matsearch/internal/classifier"
	"github.com/labhouse/matsearch/internal/router"
	"github.com/labhouse/matsearch/pkg/types"
)

func TestFormatResults_EnglishTable(t *testing.T) {
	results := []types.UnifiedSearchResult{
		{
			Material: types.MaterialDocument{
				Code: "RM000123", TradeName: "Sepimax Zen",
				INCIName: "Polyacrylate Crosspolymer-6", Supplier: "Seppic", CostPerUnit: 1250.5,
			},
			Score:        1.0,
			Availability: types.AvailabilityInStock,
		},
		{
			Material:     types.MaterialDocument{Code: "RC000300", TradeName: "AquaPlus", INCIName: "Sodium Hyaluronate"},
			Score:        0.82,
			Availability: types.AvailabilityFDAOnly,
		},
	}
	decision := router.Route("sepimax", "")
	out := formatResults("sepimax", classifier.LangEnglish, decision, results, types.ComputeStats(results))

	assert.Contains(t, out, "| # | Code | Trade Name | INCI Name | Supplier | Cost | Availability | Score |")
	assert.Contains(t, out, "| 1 | RM000123 | Sepimax Zen | Polyacrylate Crosspolymer-6 | Seppic | 1250.50 | In stock | 1.00 |")
	assert.Contains(t, out, "| 2 | RC000300 | AquaPlus | Sodium Hyaluronate | - | - | FDA only | 0.82 |")
	assert.Contains(t, out, "Found 2 material(s): 1 in stock, 1 FDA-only (50% in stock)")
	assert.Contains(t, out, decision.Reasoning)
}

func TestFormatResults_ThaiHeader(t *testing.T) {
	results := []types.UnifiedSearchResult{
		{
			Material:     types.MaterialDocument{Code: "RM000200", TradeName: "HydraSoft"},
			Score:        0.9,
			Availability: types.AvailabilityInStock,
		},
	}
	decision := router.Route("ความชุ่มชื้น", "")
	out := formatResults("ความชุ่มชื้น", classifier.LangThai, decision, results, types.ComputeStats(results))

	assert.Contains(t, out, "พบวัตถุดิบ 1 รายการ")
	assert.Contains(t, out, "มีในสต็อก")
}

func TestFormatResults_EmptyIsNotFound(t *testing.T) {
	decision := router.Route("nothing", "")
	out := formatResults("nothing", classifier.LangEnglish, decision, nil, types.SearchStats{})
	assert.Contains(t, out, "No materials found")
	assert.NotContains(t, out, "|")
}

func TestCell_EscapesPipes(t *testing.T) {
	require.Equal(t, `A\|B`, cell("A|B"))
	require.Equal(t, "-", cell(""))
}

func TestErrorMessage_Localized(t *testing.T) {
	assert.True(t, strings.HasPrefix(errorMessage(classifier.LangEnglish, "boom"), "Search failed"))
	assert.True(t, strings.HasPrefix(errorMessage(classifier.LangThai, "boom"), "ค้นหาไม่สำเร็จ"))
}
