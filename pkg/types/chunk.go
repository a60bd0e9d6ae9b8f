package types

import (
	"errors"
	"fmt"
)

// ChunkType labels the semantic block a chunk was built from. The taxonomy is
// part of the vector metadata contract: search-time metadata filtering and
// matched-field reporting both key off these values, so indexing and search
// must agree on them.
type ChunkType string

const (
	ChunkIdentity     ChunkType = "identity"      // code + trade name + INCI name
	ChunkBenefits     ChunkType = "benefits"      // benefit/property tags
	ChunkUseCase      ChunkType = "use_case"      // application/use-case tags
	ChunkSupplierCost ChunkType = "supplier_cost" // supplier and pricing block
	ChunkFullProfile  ChunkType = "full_profile"  // whole document in one chunk
)

// Chunk is one independently embeddable piece of a material document,
// produced at indexing time.
type Chunk struct {
	// ID is derived from the material code and chunk type (code#type) so a
	// re-index overwrites rather than duplicates.
	ID           string
	MaterialCode string
	Text         string
	ChunkType    ChunkType
	// Weight biases ranking toward the more important fields. Stored in the
	// vector metadata so search can re-weight without re-indexing.
	Weight float64
	// Metadata is the denormalized subset of the material document stored
	// alongside the vector.
	Metadata map[string]any
}

// ValidateChunkType checks the chunk type is part of the taxonomy.
func (c *Chunk) ValidateChunkType() error {
	switch c.ChunkType {
	case ChunkIdentity, ChunkBenefits, ChunkUseCase, ChunkSupplierCost, ChunkFullProfile:
		return nil
	default:
		return fmt.Errorf("invalid chunk type: %q", c.ChunkType)
	}
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if c.MaterialCode == "" {
		return errors.New("chunk material code cannot be empty")
	}
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.ID == "" {
		return errors.New("chunk ID must be computed")
	}
	if c.Weight < 0 {
		return errors.New("chunk weight cannot be negative")
	}
	return c.ValidateChunkType()
}

// ChunkID builds the canonical vector ID for a material code and chunk type.
func ChunkID(code string, ct ChunkType) string {
	return code + "#" + string(ct)
}
