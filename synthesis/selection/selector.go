// Package selection picks, out of the pool of admitted sequences produced by the search
// strategies, the subset worth emitting as fuzz drivers: a coverage-greedy heuristic mode and
// simpler random, first-fit and per-function modes.
package selection

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/graph"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
	"github.com/stheno-fuzz/stheno/utils"
)

// SelectedSequence couples a chosen sequence with the unique identifier the emitted driver is
// named after.
type SelectedSequence struct {
	ID       uuid.UUID
	Sequence *sequences.Sequence
}

// Selector chooses driver-worthy sequences from a sequence pool over a dependency graph.
type Selector struct {
	graph  *graph.DependencyGraph
	pool   []*sequences.Sequence
	logger *logging.Logger
}

// NewSelector creates a selector over the provided dependency graph and sequence pool.
func NewSelector(g *graph.DependencyGraph, pool []*sequences.Sequence, logger *logging.Logger) *Selector {
	if logger == nil {
		logger = logging.GlobalLogger
	}
	return &Selector{
		graph:  g,
		pool:   pool,
		logger: logger,
	}
}

// eligible indicates the sequence is worth emitting as a driver at all: it must consume fuzzer
// input and must not waste a call whose result nothing consumes (the final call excepted, as its
// result is the driver's observable outcome).
func (s *Selector) eligible(seq *sequences.Sequence) bool {
	if seq.Len() == 0 || seq.HasNoFuzzables() {
		return false
	}
	return !seq.ContainsDeadCallExceptLast(func(function int) bool {
		return s.graph.Catalog().Function(function).HasReturn()
	})
}

// HeuristicSelect greedily picks sequences maximizing new coverage, in two tiers: sequences with
// a variable-length fuzzable slot are exhausted first, since they let the fuzzer grow inputs,
// then fixed-length ones. Within a tier the candidate covering the most not-yet-covered
// functions wins, ties broken by newly covered edges and then by shortness. The dynamic tier is
// abandoned once its best candidate adds no new function; the fixed tier keeps going while a
// candidate still adds new dependency edges, and yields only when neither gain remains. Selection
// stops when maxCount sequences are chosen (zero meaning unbounded), every eligible candidate is
// taken, every graph edge is covered, or, with stopAtAllFunctions set, every catalog function is
// covered.
func (s *Selector) HeuristicSelect(maxCount int, stopAtAllFunctions bool) []SelectedSequence {
	eligible := utils.SliceWhere(s.pool, s.eligible)
	dynamic := utils.SliceWhere(eligible, func(seq *sequences.Sequence) bool {
		return !seq.FuzzablesFixedLength()
	})
	fixed := utils.SliceWhere(eligible, (*sequences.Sequence).FuzzablesFixedLength)

	coveredFunctions := make(map[int]struct{})
	coveredEdges := make(map[int]struct{})
	var selected []SelectedSequence

	take := func(seq *sequences.Sequence) {
		for _, function := range seq.CoveredFunctions() {
			coveredFunctions[function] = struct{}{}
		}
		for _, edge := range seq.CoveredEdges() {
			coveredEdges[edge] = struct{}{}
		}
		selected = append(selected, SelectedSequence{ID: uuid.New(), Sequence: seq})
	}

	done := func() bool {
		if maxCount > 0 && len(selected) >= maxCount {
			return true
		}
		if s.graph.EdgeCount() > 0 && len(coveredEdges) == s.graph.EdgeCount() {
			return true
		}
		if stopAtAllFunctions && len(coveredFunctions) == s.graph.Catalog().Len() {
			return true
		}
		return false
	}

	tiers := []struct {
		pool          []*sequences.Sequence
		edgeGainKeeps bool
	}{
		{dynamic, false},
		{fixed, true},
	}
	for _, tier := range tiers {
		remaining := make([]*sequences.Sequence, len(tier.pool))
		copy(remaining, tier.pool)

		for len(remaining) > 0 && !done() {
			bestIndex := -1
			bestFunctions, bestEdges := 0, 0
			for i, seq := range remaining {
				newFunctions := 0
				for _, function := range seq.CoveredFunctions() {
					if _, ok := coveredFunctions[function]; !ok {
						newFunctions++
					}
				}
				newEdges := 0
				for _, edge := range seq.CoveredEdges() {
					if _, ok := coveredEdges[edge]; !ok {
						newEdges++
					}
				}
				better := newFunctions > bestFunctions ||
					(newFunctions == bestFunctions && newEdges > bestEdges) ||
					(newFunctions == bestFunctions && newEdges == bestEdges &&
						bestIndex >= 0 && seq.Len() < remaining[bestIndex].Len())
				if bestIndex < 0 || better {
					bestIndex = i
					bestFunctions = newFunctions
					bestEdges = newEdges
				}
			}

			if bestFunctions == 0 && !(tier.edgeGainKeeps && bestEdges > 0) {
				break
			}
			take(remaining[bestIndex])
			remaining = append(remaining[:bestIndex], remaining[bestIndex+1:]...)
		}
	}

	s.logger.Debug("heuristic selection finished", logging.StructuredLogInfo{
		"selected":         len(selected),
		"coveredFunctions": len(coveredFunctions),
		"coveredEdges":     len(coveredEdges),
	})
	return selected
}

// RandomSelect picks up to maxCount pool sequences uniformly at random, without eligibility
// filtering. It exists as a selection-quality baseline.
func (s *Selector) RandomSelect(maxCount int, random *rand.Rand) []SelectedSequence {
	indices := random.Perm(len(s.pool))
	if maxCount > 0 && maxCount < len(indices) {
		indices = indices[:maxCount]
	}

	selected := make([]SelectedSequence, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, SelectedSequence{ID: uuid.New(), Sequence: s.pool[i]})
	}
	return selected
}

// FirstSelect picks the first maxCount eligible sequences in pool order.
func (s *Selector) FirstSelect(maxCount int) []SelectedSequence {
	var selected []SelectedSequence
	for _, seq := range s.pool {
		if maxCount > 0 && len(selected) >= maxCount {
			break
		}
		if !s.eligible(seq) {
			continue
		}
		selected = append(selected, SelectedSequence{ID: uuid.New(), Sequence: seq})
	}
	return selected
}

// PerFunctionRandomSelect picks, for each required catalog function, one random eligible pool
// sequence covering it. Functions no eligible sequence covers are skipped; a sequence covering
// several required functions is only selected once.
func (s *Selector) PerFunctionRandomSelect(required []int, random *rand.Rand) []SelectedSequence {
	chosen := make(map[*sequences.Sequence]struct{})
	var selected []SelectedSequence

	covers := func(seq *sequences.Sequence, function int) bool {
		for _, covered := range seq.CoveredFunctions() {
			if covered == function {
				return true
			}
		}
		return false
	}

	for _, function := range required {
		alreadyServed := false
		var covering []*sequences.Sequence
		for seq := range chosen {
			if covers(seq, function) {
				alreadyServed = true
				break
			}
		}
		if alreadyServed {
			continue
		}

		for _, seq := range s.pool {
			if _, ok := chosen[seq]; ok {
				continue
			}
			if s.eligible(seq) && covers(seq, function) {
				covering = append(covering, seq)
			}
		}
		if len(covering) == 0 {
			continue
		}
		seq := covering[random.Intn(len(covering))]
		chosen[seq] = struct{}{}
		selected = append(selected, SelectedSequence{ID: uuid.New(), Sequence: seq})
	}
	return selected
}
