package selection

import (
	"github.com/stheno-fuzz/stheno/synthesis/graph"
)

// Statistics summarizes a selection run for reporting: how much of the catalog and of the
// dependency graph the chosen sequences cover, and the shape of the chosen set.
type Statistics struct {
	PoolSize           int     `json:"poolSize"`
	SelectedCount      int     `json:"selectedCount"`
	CatalogFunctions   int     `json:"catalogFunctions"`
	CoveredFunctions   int     `json:"coveredFunctions"`
	GraphEdges         int     `json:"graphEdges"`
	CoveredEdges       int     `json:"coveredEdges"`
	TotalCalls         int     `json:"totalCalls"`
	AverageLength      float64 `json:"averageLength"`
	CallsPerFunction   float64 `json:"callsPerFunction"`
	MaxLength          int     `json:"maxLength"`
	UnsafeSequences    int     `json:"unsafeSequences"`
	DynamicSequences   int     `json:"dynamicSequences"`
	FunctionCoverage   float64 `json:"functionCoverage"`
	DependencyCoverage float64 `json:"dependencyCoverage"`
}

// ComputeStatistics derives selection statistics from the selected sequences, the pool they were
// drawn from and the dependency graph they cover.
func ComputeStatistics(g *graph.DependencyGraph, poolSize int, selected []SelectedSequence) Statistics {
	stats := Statistics{
		PoolSize:         poolSize,
		SelectedCount:    len(selected),
		CatalogFunctions: g.Catalog().Len(),
		GraphEdges:       g.EdgeCount(),
	}

	coveredFunctions := make(map[int]struct{})
	coveredEdges := make(map[int]struct{})
	for _, sel := range selected {
		seq := sel.Sequence
		for _, function := range seq.CoveredFunctions() {
			coveredFunctions[function] = struct{}{}
		}
		for _, edge := range seq.CoveredEdges() {
			coveredEdges[edge] = struct{}{}
		}
		stats.TotalCalls += seq.Len()
		if seq.Len() > stats.MaxLength {
			stats.MaxLength = seq.Len()
		}
		if seq.Unsafe() {
			stats.UnsafeSequences++
		}
		if !seq.FuzzablesFixedLength() {
			stats.DynamicSequences++
		}
	}

	stats.CoveredFunctions = len(coveredFunctions)
	stats.CoveredEdges = len(coveredEdges)
	if len(selected) > 0 {
		stats.AverageLength = float64(stats.TotalCalls) / float64(len(selected))
	}
	if stats.CoveredFunctions > 0 {
		stats.CallsPerFunction = float64(stats.TotalCalls) / float64(stats.CoveredFunctions)
	}
	if stats.CatalogFunctions > 0 {
		stats.FunctionCoverage = float64(stats.CoveredFunctions) / float64(stats.CatalogFunctions)
	}
	if stats.GraphEdges > 0 {
		stats.DependencyCoverage = float64(stats.CoveredEdges) / float64(stats.GraphEdges)
	}
	return stats
}
