// Package synthesis exposes the Synthesizer, the top-level orchestrator tying together the
// catalog, the dependency graph, the search engine, driver selection and sequence persistence
// for one synthesis run.
package synthesis

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/config"
	"github.com/stheno-fuzz/stheno/synthesis/corpus"
	"github.com/stheno-fuzz/stheno/synthesis/generation"
	"github.com/stheno-fuzz/stheno/synthesis/graph"
	"github.com/stheno-fuzz/stheno/synthesis/selection"
)

// Synthesizer represents one configured synthesis run over a library catalog: it owns the
// dependency graph, the search engine, and the selection of driver-worthy sequences.
type Synthesizer struct {
	// config describes the project configuration the synthesizer was created with.
	config *config.ProjectConfig

	// catalog holds the library's function signatures.
	catalog *catalog.Catalog

	// graph is the dependency graph built over the catalog.
	graph *graph.DependencyGraph

	// engine is the sequence search engine all strategies run on.
	engine *generation.Engine

	// tuning carries the per-library strategy budgets.
	tuning config.TuningTable

	// random is the seeded source shared by the randomized selection modes and the seed replay
	// budget.
	random *rand.Rand

	// selected holds the sequences the last run chose for driver emission.
	selected []selection.SelectedSequence

	// logger describes the Synthesizer's log object and can be used to log all run events.
	logger *logging.Logger
}

// NewSynthesizer validates the project configuration, builds the dependency graph over the
// provided catalog and prepares a search engine, returning a Synthesizer ready to run.
func NewSynthesizer(
	cfg *config.ProjectConfig,
	cat *catalog.Catalog,
	oracle catalog.TypeOracle,
	policy catalog.SubstitutionPolicy,
	conventions catalog.Conventions,
	logger *logging.Logger,
) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}
	logger = logger.NewSubLogger("module", logging.SYNTHESIS_SERVICE)

	tuning := config.DefaultTuningTable()
	if cfg.Synthesis.TuningTablePath != "" {
		loaded, err := config.ReadTuningTableFromFile(cfg.Synthesis.TuningTablePath)
		if err != nil {
			return nil, err
		}
		tuning = loaded
	}

	g := graph.BuildDependencyGraph(cat, oracle, policy, conventions)
	logger.Info("dependency graph built", logging.StructuredLogInfo{
		"library":   cat.Library(),
		"functions": cat.Len(),
		"edges":     g.EdgeCount(),
	})

	engine := generation.NewEngine(g, cfg.Synthesis.RandomSeed, tuning.CoverTarget(cfg.Library), logger)
	return &Synthesizer{
		config:  cfg,
		catalog: cat,
		graph:   g,
		engine:  engine,
		tuning:  tuning,
		random:  rand.New(rand.NewSource(cfg.Synthesis.RandomSeed)),
		logger:  logger,
	}, nil
}

// Graph returns the synthesizer's dependency graph.
func (s *Synthesizer) Graph() *graph.DependencyGraph {
	return s.graph
}

// Engine returns the synthesizer's search engine.
func (s *Synthesizer) Engine() *generation.Engine {
	return s.engine
}

// Selected returns the sequences the last run chose for driver emission.
func (s *Synthesizer) Selected() []selection.SelectedSequence {
	return s.selected
}

// Run executes the configured search strategy, the coverage-repair pass if enabled, and the
// configured selection mode, persisting the selection when a store path is configured. It
// returns the selection statistics of the run.
func (s *Synthesizer) Run() (selection.Statistics, error) {
	if err := s.runStrategy(); err != nil {
		return selection.Statistics{}, err
	}
	if s.config.Synthesis.CoverageRepair {
		s.engine.CoverUnvisited()
	}
	return s.finishSelection()
}

// ReplaySeeds seeds the engine's pool from mined call chains instead of a forward search, then
// runs the coverage-repair pass if enabled and the configured selection mode. maxChains bounds
// how many chains are replayed, zero meaning all of them.
func (s *Synthesizer) ReplaySeeds(chains []corpus.SeedChain, maxChains int) (corpus.ReplayStatistics, selection.Statistics, error) {
	replayer := corpus.NewReplayer(s.engine, s.logger)
	replayStats, err := replayer.Replay(chains, maxChains, s.random)
	if err != nil {
		return replayStats, selection.Statistics{}, err
	}
	if s.config.Synthesis.CoverageRepair {
		s.engine.CoverUnvisited()
	}
	stats, err := s.finishSelection()
	return replayStats, stats, err
}

// runStrategy dispatches the configured strategy name to the search engine.
func (s *Synthesizer) runStrategy() error {
	synthesisConfig := s.config.Synthesis
	walkSteps := s.tuning.WalkSteps(s.config.Library, synthesisConfig.RandomWalkSteps)

	switch synthesisConfig.Strategy {
	case config.StrategyDefault:
		s.engine.BreadthFirst(synthesisConfig.MaxSequenceLength, true, false)
	case config.StrategyBFS:
		s.engine.BreadthFirst(synthesisConfig.MaxSequenceLength, false, false)
	case config.StrategyBFSEndpoint:
		s.engine.BreadthFirst(synthesisConfig.MaxSequenceLength, true, false)
	case config.StrategyFastBFS:
		s.engine.BreadthFirst(synthesisConfig.MaxSequenceLength, false, true)
	case config.StrategyFastBFSEndpoint:
		s.engine.BreadthFirst(synthesisConfig.MaxSequenceLength, true, true)
	case config.StrategyTryDeep:
		s.engine.TryDeep(synthesisConfig.MaxPoolCoverageProduct)
	case config.StrategyRandomWalk:
		s.engine.RandomWalk(walkSteps, false, synthesisConfig.RandomWalkMaxDepth)
	case config.StrategyRandomWalkEndpoint:
		s.engine.RandomWalk(walkSteps, true, synthesisConfig.RandomWalkMaxDepth)
	case config.StrategyBackward:
		s.engine.Backward()
	default:
		return errors.Errorf("unknown synthesis strategy %q", synthesisConfig.Strategy)
	}
	return nil
}

// finishSelection runs the configured selection mode over the engine's pool, persists the result
// when a store path is configured, and computes the run statistics.
func (s *Synthesizer) finishSelection() (selection.Statistics, error) {
	selector := selection.NewSelector(s.graph, s.engine.Pool(), s.logger)
	selectionConfig := s.config.Selection

	switch selectionConfig.Mode {
	case config.SelectionHeuristic, "":
		s.selected = selector.HeuristicSelect(selectionConfig.MaxSequences, selectionConfig.StopAtAllFunctions)
	case config.SelectionRandom:
		s.selected = selector.RandomSelect(selectionConfig.MaxSequences, s.random)
	case config.SelectionFirst:
		s.selected = selector.FirstSelect(selectionConfig.MaxSequences)
	default:
		return selection.Statistics{}, errors.Errorf("unknown selection mode %q", selectionConfig.Mode)
	}

	if len(s.selected) == 0 {
		s.logger.Warn("no sequence in the pool was worth emitting as a driver")
	}

	if selectionConfig.StorePath != "" {
		store, err := corpus.OpenStore(selectionConfig.StorePath, s.config.Library)
		if err != nil {
			return selection.Statistics{}, err
		}
		defer store.Close()

		saved, err := store.SaveSelected(s.selected, func(function int) string {
			return s.catalog.Function(function).Name
		})
		if err != nil {
			return selection.Statistics{}, err
		}
		s.logger.Info("persisted selected sequences", logging.StructuredLogInfo{
			"saved": saved,
			"path":  selectionConfig.StorePath,
		})
	}

	stats := selection.ComputeStatistics(s.graph, len(s.engine.Pool()), s.selected)
	s.logger.Info("selection finished", logging.StructuredLogInfo{
		"pool":             stats.PoolSize,
		"selected":         stats.SelectedCount,
		"coveredFunctions": stats.CoveredFunctions,
		"coveredEdges":     stats.CoveredEdges,
	})
	return stats, nil
}
