package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ExactCode(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"PlainCode", "RM000123", "RM000123"},
		{"LowercaseCode", "rm000123", "RM000123"},
		{"CodeWithDash", "RC-0042", "RC0042"},
		{"CodeInSentence", "what is the cost of RM000123 per kg", "RM000123"},
		{"CodeWithSuffix", "RM0042A", "RM0042A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.query)
			assert.Equal(t, TypeExactCode, res.QueryType)
			assert.GreaterOrEqual(t, res.Confidence, 0.9)
			assert.Equal(t, StrategyDirectLookup, res.Strategy)
			require.NotEmpty(t, res.Codes)
			assert.Equal(t, tt.code, res.Codes[0])
		})
	}
}

func TestClassify_NameSearch(t *testing.T) {
	c := New()

	res := c.Classify(`do we have "Sepimax Zen" available`)
	assert.Equal(t, TypeNameSearch, res.QueryType)
	require.NotEmpty(t, res.Names)
	assert.Equal(t, "Sepimax Zen", res.Names[0])

	res = c.Classify("price of Aqua Shuttle EX please")
	assert.Equal(t, TypeNameSearch, res.QueryType)
	require.NotEmpty(t, res.Names)
	assert.Contains(t, res.Names[0], "Aqua Shuttle")
}

func TestClassify_QuestionOpenerIsNotAName(t *testing.T) {
	c := New()

	res := c.Classify("What Is The best moisturizing agent")
	assert.NotEqual(t, TypeNameSearch, res.QueryType)
	assert.Equal(t, TypePropertySearch, res.QueryType)
}

func TestClassify_PropertySearch(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		query    string
		property string
	}{
		{"English", "looking for a moisturizing ingredient", "moisturizing"},
		{"EnglishAntiAging", "any anti-aging actives under 2000 baht", "anti-aging"},
		{"ThaiBrightening", "สารที่ช่วยให้ผิวกระจ่างใส", "brightening"},
		{"ThaiMoisturizing", "หาสารเพิ่มความชุ่มชื้น", "moisturizing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.query)
			assert.Equal(t, TypePropertySearch, res.QueryType)
			assert.Equal(t, StrategyPropertyMatch, res.Strategy)
			assert.Contains(t, res.Properties, tt.property)
		})
	}
}

func TestClassify_SupplierSearch(t *testing.T) {
	c := New()

	res := c.Classify("which supplier do we buy glycerin from")
	// "glycerin" is not in the benefit tables, so the supplier keyword wins.
	assert.Equal(t, TypeSupplierSearch, res.QueryType)
	assert.Equal(t, StrategySupplierMatch, res.Strategy)
}

func TestClassify_GenericFallback(t *testing.T) {
	c := New()

	res := c.Classify("something nice for summer formulas")
	assert.Equal(t, TypeGeneric, res.QueryType)
	assert.Less(t, res.Confidence, 0.3)
	assert.Equal(t, StrategyBroadSemantic, res.Strategy)
}

func TestClassify_NeverPanicsOnGarbage(t *testing.T) {
	c := New()

	inputs := []string{
		"",
		"   ",
		"!!!???",
		strings.Repeat("ก", 5000),
		"\x00\x01\x02",
		`"" ''`,
	}

	for _, q := range inputs {
		res := c.Classify(q)
		assert.NotEmpty(t, res.QueryType)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
	}
}

func TestClassify_ThaiScenario(t *testing.T) {
	c := New()

	// "find 5 moisturizing materials"
	res := c.Classify("หาสารที่ช่วยความชุ่มชื้น 5 ตัว")
	assert.Equal(t, LangThai, res.Language)
	assert.Equal(t, TypePropertySearch, res.QueryType)
	assert.Contains(t, res.Properties, "moisturizing")
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		query string
		want  Language
	}{
		{"moisturizing cream base", LangEnglish},
		{"สารกันเสีย", LangThai},
		{"หา glycerin ที่ถูกที่สุด", LangThai},
		{"RM000123", LangEnglish},
		{"", LangEnglish},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, detectLanguage(tt.query), "query: %q", tt.query)
	}
}

func TestExpansion_CappedAtMax(t *testing.T) {
	c := New()

	// Hits several benefit entries at once; expansion must stay bounded.
	res := c.Classify("moisturizing brightening anti-aging soothing sunscreen")
	assert.Equal(t, TypePropertySearch, res.QueryType)
	assert.LessOrEqual(t, len(res.Expanded), MaxExpansions)
	assert.NotEmpty(t, res.Expanded)
}

func TestExpansion_CodeVariants(t *testing.T) {
	c := New()

	res := c.Classify("RM000123")
	assert.Contains(t, res.Expanded, "RM000123")
	assert.Contains(t, res.Expanded, "RM-000123")
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "RM000123", NormalizeCode(" rm-000123 "))
	assert.Equal(t, "RC42A", NormalizeCode("rc-42a"))
}
