// Package models contains the domain entities shared by the document store,
// the graph store and the fruit service.
//
// Graph entities use `crud` struct tags to describe their mapping to Neo4j
// nodes; see the fruitgraph package for the tag grammar.
package models

// Fruit is the graph-side projection of a fruit record. It maps to a
// `:Fruit` node keyed by fruit_id.
type Fruit struct {
	// FruitID is the business identifier shared with the document store.
	FruitID string `crud:"pk,label:Fruit,property:fruit_id"`

	// NameVI is the Vietnamese display name.
	NameVI string `crud:"property:name_vi"`

	// NameEN is the English display name.
	NameEN string `crud:"property:name_en"`
}

// GraphStats holds the graph-wide counters shown on the dashboard.
type GraphStats struct {
	TotalFruits   int64 `json:"total_fruits"`
	TotalBenefits int64 `json:"total_benefits"`
}

// FruitRank is one entry of the fruits ranked by benefit count.
type FruitRank struct {
	FruitID      string `json:"fruit_id"`
	NameVI       string `json:"name_vi,omitempty"`
	NameEN       string `json:"name_en,omitempty"`
	BenefitCount int64  `json:"benefit_count"`
}

// ValueCount is one bucket of a distinct-value aggregation.
type ValueCount struct {
	Value any   `json:"value" bson:"_id"`
	Count int64 `json:"count" bson:"count"`
}
