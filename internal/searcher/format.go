package searcher

import (
	"fmt"
	"strings"

	"github.com/labhouse/matsearch/internal/classifier"
	"github.com/labhouse/matsearch/internal/router"
	"github.com/labhouse/matsearch/pkg/types"
)

// The table column set and ordering are a contract with downstream LLM
// tool-calling code and chat UIs; change them and the callers break.
var tableHeader = "| # | Code | Trade Name | INCI Name | Supplier | Cost | Availability | Score |\n" +
	"|---|------|------------|-----------|----------|------|--------------|-------|"

// formatResults renders the ranked results as a localized summary plus a
// markdown table.
func formatResults(query string, lang classifier.Language, decision router.Decision, results []types.UnifiedSearchResult, stats types.SearchStats) string {
	if len(results) == 0 {
		return notFoundMessage(lang, query)
	}

	var b strings.Builder
	b.WriteString(summaryHeader(lang, len(results), stats))
	b.WriteString("\n\n")
	b.WriteString(tableHeader)
	b.WriteString("\n")

	for i, r := range results {
		cost := "-"
		if r.Material.CostPerUnit > 0 {
			cost = fmt.Sprintf("%.2f", r.Material.CostPerUnit)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %.2f |\n",
			i+1,
			cell(r.Material.Code),
			cell(r.Material.TradeName),
			cell(r.Material.INCIName),
			cell(r.Material.Supplier),
			cost,
			availabilityBadge(lang, r.Availability),
			r.Score,
		)
	}

	b.WriteString("\n")
	b.WriteString(scopeFooter(lang, decision))
	return b.String()
}

func summaryHeader(lang classifier.Language, total int, stats types.SearchStats) string {
	if lang == classifier.LangThai {
		return fmt.Sprintf("พบวัตถุดิบ %d รายการ (มีในสต็อก %d, เฉพาะทะเบียน อย. %d, คิดเป็นของในสต็อก %.0f%%)",
			total, stats.InStock, stats.FDAOnly, stats.InStockPercentage)
	}
	return fmt.Sprintf("Found %d material(s): %d in stock, %d FDA-only (%.0f%% in stock)",
		total, stats.InStock, stats.FDAOnly, stats.InStockPercentage)
}

func scopeFooter(lang classifier.Language, decision router.Decision) string {
	if lang == classifier.LangThai {
		return fmt.Sprintf("ขอบเขตการค้นหา: %s (%s)", string(decision.Mode), decision.Reasoning)
	}
	return fmt.Sprintf("Search scope: %s (%s)", string(decision.Mode), decision.Reasoning)
}

func availabilityBadge(lang classifier.Language, a types.Availability) string {
	if lang == classifier.LangThai {
		if a == types.AvailabilityInStock {
			return "มีในสต็อก"
		}
		return "เฉพาะทะเบียน อย."
	}
	if a == types.AvailabilityInStock {
		return "In stock"
	}
	return "FDA only"
}

func notFoundMessage(lang classifier.Language, query string) string {
	if lang == classifier.LangThai {
		return fmt.Sprintf("ไม่พบวัตถุดิบที่ตรงกับ \"%s\" ลองใช้คำค้นอื่นหรือตรวจสอบรหัสวัตถุดิบอีกครั้ง", query)
	}
	return fmt.Sprintf("No materials found for %q. Try a different term or check the material code.", query)
}

func errorMessage(lang classifier.Language, detail string) string {
	if lang == classifier.LangThai {
		return fmt.Sprintf("ค้นหาไม่สำเร็จ: %s", detail)
	}
	return fmt.Sprintf("Search failed: %s", detail)
}

// cell escapes pipes so field values cannot break the table layout.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
