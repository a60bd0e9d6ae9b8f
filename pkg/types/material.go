package types

import (
	"errors"
	"strings"
	"time"
)

// Collection identifies a logical material collection.
type Collection string

const (
	// CollectionInStock holds materials currently available in inventory.
	CollectionInStock Collection = "in_stock"
	// CollectionAllFDA holds the complete FDA-registered catalog (superset of in-stock).
	CollectionAllFDA Collection = "all_fda"
	// CollectionBoth searches both collections.
	CollectionBoth Collection = "both"
)

// ValidateCollection checks that a collection value is one of the known set.
// An empty value is allowed and means "let the router decide".
func ValidateCollection(c Collection) error {
	switch c {
	case "", CollectionInStock, CollectionAllFDA, CollectionBoth:
		return nil
	default:
		return errors.New("invalid collection: " + string(c))
	}
}

// Availability tags a search result with its stock status, derived from the
// collection or namespace it originated from.
type Availability string

const (
	AvailabilityInStock Availability = "in_stock"
	AvailabilityFDAOnly Availability = "fda_only"
)

// AvailabilityFor maps a source collection to its availability tag.
func AvailabilityFor(c Collection) Availability {
	if c == CollectionInStock {
		return AvailabilityInStock
	}
	return AvailabilityFDAOnly
}

// MaterialDocument is the canonical catalog entry for a raw ingredient.
// Both backing collections are normalized into this shape before any scoring
// or formatting logic sees them, so downstream code never branches on the
// source document layout.
type MaterialDocument struct {
	Code        string    `bson:"material_code" json:"material_code"`
	TradeName   string    `bson:"trade_name" json:"trade_name"`
	INCIName    string    `bson:"inci_name" json:"inci_name"`
	Supplier    string    `bson:"supplier" json:"supplier"`
	CostPerUnit float64   `bson:"cost_per_unit" json:"cost_per_unit"`
	Benefits    []string  `bson:"benefits" json:"benefits,omitempty"`
	UseCases    []string  `bson:"use_cases" json:"use_cases,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at,omitempty"`
}

// Validate checks the minimal fields the search pipeline relies on.
func (m *MaterialDocument) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return errors.New("material code is required")
	}
	if strings.TrimSpace(m.TradeName) == "" && strings.TrimSpace(m.INCIName) == "" {
		return errors.New("material needs a trade name or an INCI name")
	}
	return nil
}

// HasBenefit reports whether the material carries the given benefit tag,
// matching case-insensitively and allowing partial tag matches ("moistur"
// matches "moisturizing").
func (m *MaterialDocument) HasBenefit(benefit string) bool {
	benefit = strings.ToLower(strings.TrimSpace(benefit))
	if benefit == "" {
		return false
	}
	for _, b := range m.Benefits {
		if strings.Contains(strings.ToLower(b), benefit) {
			return true
		}
	}
	return false
}
