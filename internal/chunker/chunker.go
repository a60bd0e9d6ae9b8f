package chunker

import (
	"fmt"
	"strings"

	"github.com/labhouse/matsearch/pkg/types"
)

const (
	// MinChunkChars drops chunks too short to embed meaningfully.
	MinChunkChars = 8
)

// defaultWeights bias ranking toward identity fields; pricing rarely drives
// relevance but still needs to be findable.
var defaultWeights = map[types.ChunkType]float64{
	types.ChunkIdentity:     1.0,
	types.ChunkFullProfile:  0.95,
	types.ChunkBenefits:     0.9,
	types.ChunkUseCase:      0.85,
	types.ChunkSupplierCost: 0.7,
}

// Config controls chunk weights and the minimum text length.
type Config struct {
	Weights       map[types.ChunkType]float64
	MinChunkChars int
}

// DefaultConfig returns the standard chunking configuration.
func DefaultConfig() Config {
	weights := make(map[types.ChunkType]float64, len(defaultWeights))
	for k, v := range defaultWeights {
		weights[k] = v
	}
	return Config{
		Weights:       weights,
		MinChunkChars: MinChunkChars,
	}
}

// Chunker splits material documents into field-weighted semantic chunks
type Chunker struct {
	cfg Config
}

// New creates a new Chunker instance
func New(cfg Config) *Chunker {
	if cfg.Weights == nil {
		cfg.Weights = DefaultConfig().Weights
	}
	if cfg.MinChunkChars <= 0 {
		cfg.MinChunkChars = MinChunkChars
	}
	return &Chunker{cfg: cfg}
}

// ChunkMaterial splits one material document into embeddable chunks. Fields
// that are empty produce no chunk; a valid document always yields at least
// the identity and full-profile chunks. Availability is baked into the
// metadata because the vector store is queried per namespace and matches
// must carry their stock status without a second lookup.
func (c *Chunker) ChunkMaterial(doc *types.MaterialDocument, availability types.Availability) ([]types.Chunk, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid material: %w", err)
	}

	name := displayName(doc)
	var chunks []types.Chunk

	add := func(ct types.ChunkType, text string) {
		text = strings.TrimSpace(text)
		if len(text) < c.cfg.MinChunkChars {
			return
		}
		chunks = append(chunks, types.Chunk{
			ID:           types.ChunkID(doc.Code, ct),
			MaterialCode: doc.Code,
			Text:         text,
			ChunkType:    ct,
			Weight:       c.cfg.Weights[ct],
			Metadata:     c.metadataFor(doc, ct, availability),
		})
	}

	add(types.ChunkIdentity, identityText(doc))

	if len(doc.Benefits) > 0 {
		add(types.ChunkBenefits, fmt.Sprintf("%s benefits: %s.", name, strings.Join(doc.Benefits, ", ")))
	}
	if len(doc.UseCases) > 0 {
		add(types.ChunkUseCase, fmt.Sprintf("%s is used in: %s.", name, strings.Join(doc.UseCases, ", ")))
	}
	if doc.Supplier != "" {
		add(types.ChunkSupplierCost, supplierText(doc, name))
	}

	add(types.ChunkFullProfile, fullProfileText(doc, name))

	return chunks, nil
}

func (c *Chunker) metadataFor(doc *types.MaterialDocument, ct types.ChunkType, availability types.Availability) map[string]any {
	md := map[string]any{
		"material_code": doc.Code,
		"trade_name":    doc.TradeName,
		"inci_name":     doc.INCIName,
		"supplier":      doc.Supplier,
		"cost_per_unit": doc.CostPerUnit,
		"chunk_type":    string(ct),
		"availability":  string(availability),
		"weight":        c.cfg.Weights[ct],
	}
	if len(doc.Benefits) > 0 {
		md["benefits"] = strings.Join(doc.Benefits, ", ")
	}
	return md
}

func displayName(doc *types.MaterialDocument) string {
	if doc.TradeName != "" {
		return doc.TradeName
	}
	return doc.INCIName
}

func identityText(doc *types.MaterialDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Material %s", doc.Code)
	if doc.TradeName != "" {
		fmt.Fprintf(&b, ". Trade name: %s", doc.TradeName)
	}
	if doc.INCIName != "" {
		fmt.Fprintf(&b, ". INCI name: %s", doc.INCIName)
	}
	b.WriteString(".")
	return b.String()
}

func supplierText(doc *types.MaterialDocument, name string) string {
	if doc.CostPerUnit > 0 {
		return fmt.Sprintf("%s is supplied by %s at %.2f per unit.", name, doc.Supplier, doc.CostPerUnit)
	}
	return fmt.Sprintf("%s is supplied by %s.", name, doc.Supplier)
}

func fullProfileText(doc *types.MaterialDocument, name string) string {
	parts := []string{identityText(doc)}
	if len(doc.Benefits) > 0 {
		parts = append(parts, fmt.Sprintf("Benefits: %s.", strings.Join(doc.Benefits, ", ")))
	}
	if len(doc.UseCases) > 0 {
		parts = append(parts, fmt.Sprintf("Use cases: %s.", strings.Join(doc.UseCases, ", ")))
	}
	if doc.Supplier != "" {
		parts = append(parts, supplierText(doc, name))
	}
	return strings.Join(parts, " ")
}
