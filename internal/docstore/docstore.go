package docstore

import (
	"context"

	"github.com/labhouse/matsearch/pkg/types"
)

// MaterialStore is the document-store boundary for the search pipeline.
// Implementations resolve a logical collection (in_stock or all_fda) to a
// backing collection; CollectionBoth is never passed here, the orchestrator
// fans out per collection.
type MaterialStore interface {
	// FindByCode looks up a material by its normalized code. Returns
	// types.ErrNotFound when the collection has no such code.
	FindByCode(ctx context.Context, col types.Collection, code string) (*types.MaterialDocument, error)

	// FindFuzzy runs a case-insensitive substring match of term against the
	// code, trade name and INCI name fields, up to limit documents.
	FindFuzzy(ctx context.Context, col types.Collection, term string, limit int) ([]types.MaterialDocument, error)

	// FindByBenefit returns materials whose benefit tags contain the given
	// benefit, matched case-insensitively.
	FindByBenefit(ctx context.Context, col types.Collection, benefit string, limit int) ([]types.MaterialDocument, error)

	// ListAll streams every document in the collection. Used by the indexing
	// pipeline, never on the query path.
	ListAll(ctx context.Context, col types.Collection) ([]types.MaterialDocument, error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context, col types.Collection) (int64, error)

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close(ctx context.Context) error
}
