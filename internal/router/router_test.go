package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labhouse/matsearch/pkg/types"
)

func TestRoute_ExplicitOverride(t *testing.T) {
	tests := []struct {
		name     string
		explicit types.Collection
		want     []types.Collection
	}{
		{"InStock", types.CollectionInStock, []types.Collection{types.CollectionInStock}},
		{"AllFDA", types.CollectionAllFDA, []types.Collection{types.CollectionAllFDA}},
		{"Both", types.CollectionBoth, []types.Collection{types.CollectionInStock, types.CollectionAllFDA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Route("anything at all", tt.explicit)
			assert.Equal(t, tt.want, d.Collections)
			assert.Equal(t, 1.0, d.Confidence)
			assert.Contains(t, d.Reasoning, "explicit override")
		})
	}
}

func TestRoute_StockIntent(t *testing.T) {
	queries := []string{
		"moisturizers in stock",
		"what surfactants are available now",
		"สารกันเสียที่มีในสต็อก",
		"หาตัวที่พร้อมส่ง",
	}

	for _, q := range queries {
		d := Route(q, "")
		require.Len(t, d.Collections, 1, "query: %q", q)
		assert.Equal(t, types.CollectionInStock, d.Collections[0], "query: %q", q)
		assert.Equal(t, ModeInStock, d.Mode)
		assert.NotEmpty(t, d.Reasoning)
	}
}

func TestRoute_CatalogBreadth(t *testing.T) {
	queries := []string{
		"show all brightening agents",
		"every fda registered preservative",
		"สารกันแดดทั้งหมด",
	}

	for _, q := range queries {
		d := Route(q, "")
		require.Len(t, d.Collections, 1, "query: %q", q)
		assert.Equal(t, types.CollectionAllFDA, d.Collections[0], "query: %q", q)
		assert.Equal(t, ModeAllFDA, d.Mode)
	}
}

func TestRoute_DefaultBoth(t *testing.T) {
	d := Route("moisturizing actives for a night cream", "")
	assert.Equal(t, []types.Collection{types.CollectionInStock, types.CollectionAllFDA}, d.Collections)
	assert.Equal(t, ModeBoth, d.Mode)
	assert.True(t, d.PrioritizeStock)
	assert.NotEmpty(t, d.Reasoning)
}

func TestRoute_WordBoundary(t *testing.T) {
	// "small" and "ball" contain "all" as a substring; must not widen scope.
	d := Route("a small amount of thickener for a ball mill", "")
	assert.Equal(t, ModeBoth, d.Mode)
}

func TestDecision_Includes(t *testing.T) {
	d := Route("anything", types.CollectionBoth)
	assert.True(t, d.Includes(types.CollectionInStock))
	assert.True(t, d.Includes(types.CollectionAllFDA))

	d = Route("anything", types.CollectionInStock)
	assert.False(t, d.Includes(types.CollectionAllFDA))
}
