// Package router decides which material collections a query should search.
//
// The routing rules, in order: an explicit caller override always wins;
// stock-intent keywords narrow to the in-stock collection; catalog-breadth
// keywords widen to the full FDA catalog; everything else searches both with
// in-stock results prioritized downstream, since users usually want what
// they can actually order but should still see alternatives.
package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/labhouse/matsearch/pkg/types"
)

// Mode labels the routing outcome for logging and formatted output.
type Mode string

const (
	ModeInStock Mode = "in_stock_only"
	ModeAllFDA  Mode = "all_fda_only"
	ModeBoth    Mode = "both_prioritized"
)

// Decision is the ephemeral, per-query routing result. It is used for
// controlling the search fan-out and for telemetry; it is never persisted.
type Decision struct {
	Collections []types.Collection `json:"collections"`
	Mode        Mode               `json:"mode"`
	// Reasoning explains the scope choice to the AI/user in the formatted
	// output. Always present.
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	// PrioritizeStock asks the ranking stage to break near-ties in favor of
	// in-stock results.
	PrioritizeStock bool `json:"prioritize_stock"`
}

// stockIntentKeywords signal the user only wants orderable inventory.
var stockIntentKeywords = []string{
	"in stock", "in-stock", "available now", "on hand", "ready to ship",
	"มีในสต็อก", "ในสต็อก", "มีของ", "พร้อมส่ง", "พร้อมใช้",
}

// breadthKeywords signal the user wants the whole registered catalog.
var breadthKeywords = []string{
	"all", "entire", "full catalog", "fda", "registered",
	"ทั้งหมด", "ทุกตัว", "อย.",
}

// Route decides the collection scope for a query. If explicit is non-empty
// it is honored directly with full confidence.
func Route(query string, explicit types.Collection) Decision {
	if explicit != "" && explicit != types.CollectionBoth {
		return Decision{
			Collections: []types.Collection{explicit},
			Mode:        modeFor(explicit),
			Reasoning:   fmt.Sprintf("explicit override: caller requested %s", explicit),
			Confidence:  1.0,
		}
	}
	if explicit == types.CollectionBoth {
		return Decision{
			Collections:     bothCollections(),
			Mode:            ModeBoth,
			Reasoning:       "explicit override: caller requested both collections",
			Confidence:      1.0,
			PrioritizeStock: true,
		}
	}

	lower := strings.ToLower(query)

	if kw, ok := matchKeyword(lower, stockIntentKeywords); ok {
		return Decision{
			Collections: []types.Collection{types.CollectionInStock},
			Mode:        ModeInStock,
			Reasoning:   fmt.Sprintf("stock-intent keyword %q: searching in-stock inventory only", kw),
			Confidence:  0.9,
		}
	}

	if kw, ok := matchKeyword(lower, breadthKeywords); ok {
		return Decision{
			Collections: []types.Collection{types.CollectionAllFDA},
			Mode:        ModeAllFDA,
			Reasoning:   fmt.Sprintf("catalog-breadth keyword %q: searching the full FDA catalog", kw),
			Confidence:  0.85,
		}
	}

	return Decision{
		Collections:     bothCollections(),
		Mode:            ModeBoth,
		Reasoning:       "no scope keyword detected: searching both collections with in-stock results prioritized",
		Confidence:      0.6,
		PrioritizeStock: true,
	}
}

// Includes reports whether the decision covers the given collection.
func (d Decision) Includes(c types.Collection) bool {
	for _, dc := range d.Collections {
		if dc == c {
			return true
		}
	}
	return false
}

func bothCollections() []types.Collection {
	return []types.Collection{types.CollectionInStock, types.CollectionAllFDA}
}

func modeFor(c types.Collection) Mode {
	if c == types.CollectionInStock {
		return ModeInStock
	}
	return ModeAllFDA
}

// matchKeyword does word-boundary matching for Latin keywords and substring
// matching for Thai. Plain substring matching for "all" would fire inside
// "small" or "ball", hence the boundary check.
func matchKeyword(lowerQuery string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if isLatin(kw) {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
			if re.MatchString(lowerQuery) {
				return kw, true
			}
		} else if strings.Contains(lowerQuery, kw) {
			return kw, true
		}
	}
	return "", false
}

func isLatin(s string) bool {
	for _, r := range s {
		if r >= 0x0E00 && r <= 0x0E7F {
			return false
		}
	}
	return true
}
