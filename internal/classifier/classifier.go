package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

// QueryType is the closed set of query classes the search pipeline knows
// how to handle.
type QueryType string

const (
	TypeExactCode      QueryType = "exact_code"
	TypeNameSearch     QueryType = "name_search"
	TypePropertySearch QueryType = "property_search"
	TypeSupplierSearch QueryType = "supplier_search"
	TypeGeneric        QueryType = "generic"
)

// Strategy is the search strategy suggested for a classified query.
type Strategy string

const (
	StrategyDirectLookup  Strategy = "direct_lookup"
	StrategyNameMatch     Strategy = "name_match"
	StrategyPropertyMatch Strategy = "property_match"
	StrategySupplierMatch Strategy = "supplier_match"
	StrategyBroadSemantic Strategy = "broad_semantic"
)

// Language is the dominant language detected in a query.
type Language string

const (
	LangThai    Language = "th"
	LangEnglish Language = "en"
)

// Result is the ephemeral, per-query classification output. It is never
// persisted.
type Result struct {
	QueryType  QueryType
	Confidence float64
	// Patterns lists which detectors fired, for logging.
	Patterns []string
	// Extracted entities
	Codes      []string
	Names      []string
	Properties []string
	Strategy   Strategy
	Language   Language
	// Expanded holds alternate phrasings of the query, capped at
	// MaxExpansions to bound downstream fan-out.
	Expanded []string
}

// MaxExpansions bounds the number of query variants produced.
const MaxExpansions = 5

var (
	// Material codes look like RM000123 or RC-0042A. The prefix set matches
	// the catalog's code scheme.
	codePattern = regexp.MustCompile(`(?i)\b(?:RM|RC)-?[0-9][0-9A-Za-z-]*\b`)

	quotedPattern = regexp.MustCompile(`"([^"]{2,})"|'([^']{2,})'|“([^”]{2,})”`)

	// Two or more consecutive capitalized words read as a trade name
	// ("Sepimax Zen", "Aqua Shuttle EX").
	capitalizedPhrase = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]+(?:[ -][A-Z0-9][a-zA-Z0-9]*)+)\b`)
)

// Classifier labels free-text queries. It is stateless and safe for
// concurrent use; all heuristics are pure functions over the keyword tables.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify inspects a raw Thai/English query and returns its type, extracted
// entities, suggested strategy and expansion variants. It never fails:
// unrecognized input degrades to a low-confidence generic classification.
func (c *Classifier) Classify(query string) Result {
	query = strings.TrimSpace(query)
	res := Result{
		QueryType:  TypeGeneric,
		Confidence: 0.1,
		Strategy:   StrategyBroadSemantic,
		Language:   detectLanguage(query),
	}
	if query == "" {
		return res
	}

	if codes := codePattern.FindAllString(query, -1); len(codes) > 0 {
		res.QueryType = TypeExactCode
		res.Confidence = 0.95
		res.Strategy = StrategyDirectLookup
		res.Patterns = append(res.Patterns, "material_code")
		for _, code := range codes {
			res.Codes = append(res.Codes, NormalizeCode(code))
		}
		res.Expanded = expandCodes(res.Codes)
		return res
	}

	if names := extractNames(query); len(names) > 0 {
		res.QueryType = TypeNameSearch
		res.Confidence = 0.75
		res.Strategy = StrategyNameMatch
		res.Patterns = append(res.Patterns, "trade_name")
		res.Names = names
		res.Expanded = expandNames(names)
		return res
	}

	if props, matched := extractProperties(query); len(props) > 0 {
		res.QueryType = TypePropertySearch
		res.Confidence = 0.7 + 0.05*float64(min(len(props), 4))
		res.Strategy = StrategyPropertyMatch
		res.Patterns = append(res.Patterns, matched...)
		res.Properties = props
		res.Expanded = expandProperties(props)
		return res
	}

	if hasKeyword(query, supplierKeywords) {
		res.QueryType = TypeSupplierSearch
		res.Confidence = 0.7
		res.Strategy = StrategySupplierMatch
		res.Patterns = append(res.Patterns, "supplier_keyword")
		return res
	}

	// Nothing matched strongly: broad semantic search with low confidence.
	res.Confidence = 0.2
	return res
}

// NormalizeCode canonicalizes a material code: uppercase, dashes stripped.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.ReplaceAll(code, "-", "")
}

// detectLanguage picks the dominant script by rune counts. Thai wins ties so
// mixed queries written by Thai users get Thai-formatted output.
func detectLanguage(query string) Language {
	var thai, latin int
	for _, r := range query {
		switch {
		case r >= 0x0E00 && r <= 0x0E7F:
			thai++
		case unicode.IsLetter(r) && r < 0x0250:
			latin++
		}
	}
	if thai > 0 && thai >= latin {
		return LangThai
	}
	return LangEnglish
}

func extractNames(query string) []string {
	var names []string
	for _, m := range quotedPattern.FindAllStringSubmatch(query, -1) {
		for _, group := range m[1:] {
			if group != "" {
				names = append(names, strings.TrimSpace(group))
			}
		}
	}
	if len(names) > 0 {
		return dedupe(names)
	}

	lower := strings.ToLower(query)
	for _, marker := range tradeNameMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			rest := strings.TrimSpace(query[idx+len(marker):])
			if rest != "" {
				names = append(names, rest)
			}
		}
	}
	if len(names) > 0 {
		return dedupe(names)
	}

	for _, m := range capitalizedPhrase.FindAllString(query, -1) {
		m = strings.TrimSpace(m)
		if isQuestionPhrase(m) {
			continue
		}
		names = append(names, m)
	}
	return dedupe(names)
}

// isQuestionPhrase filters out capitalized sentence openers ("What Is The")
// that would otherwise read as trade names.
func isQuestionPhrase(phrase string) bool {
	first := strings.ToLower(strings.Fields(phrase)[0])
	switch first {
	case "what", "which", "where", "who", "how", "is", "are", "the", "find", "show", "list", "give":
		return true
	}
	return false
}

func extractProperties(query string) (props []string, matched []string) {
	lower := strings.ToLower(query)
	for _, entry := range benefitTable {
		for _, variant := range entry.Variants {
			if containsKeyword(lower, variant) {
				props = append(props, entry.Canonical)
				matched = append(matched, variant)
				break
			}
		}
	}
	return dedupe(props), matched
}

func expandCodes(codes []string) []string {
	var out []string
	for _, code := range codes {
		out = append(out, code)
		if len(code) > 2 {
			// RM000123 -> RM-000123, the punctuation users often add
			out = append(out, code[:2]+"-"+code[2:])
		}
	}
	return capExpansions(out)
}

func expandNames(names []string) []string {
	var out []string
	for _, name := range names {
		out = append(out, name)
		if lower := strings.ToLower(name); lower != name {
			out = append(out, lower)
		}
	}
	return capExpansions(out)
}

func expandProperties(props []string) []string {
	var out []string
	for _, p := range props {
		out = append(out, p)
		out = append(out, benefitSynonyms[p]...)
	}
	return capExpansions(out)
}

func capExpansions(variants []string) []string {
	variants = dedupe(variants)
	if len(variants) > MaxExpansions {
		variants = variants[:MaxExpansions]
	}
	return variants
}

// containsKeyword does word-boundary matching for Latin keywords and plain
// substring matching for Thai (which has no word separators).
func containsKeyword(lowerQuery, keyword string) bool {
	keyword = strings.ToLower(keyword)
	if isLatin(keyword) {
		return regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`).MatchString(lowerQuery)
	}
	return strings.Contains(lowerQuery, keyword)
}

func hasKeyword(query string, keywords []string) bool {
	lower := strings.ToLower(query)
	for _, kw := range keywords {
		if containsKeyword(lower, kw) {
			return true
		}
	}
	return false
}

func isLatin(s string) bool {
	for _, r := range s {
		if r >= 0x0E00 && r <= 0x0E7F {
			return false
		}
	}
	return true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
