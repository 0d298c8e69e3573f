package config

import (
	"github.com/rs/zerolog"
)

// Strategy names accepted by SynthesisConfig.Strategy. The empty string selects
// StrategyDefault.
const (
	StrategyDefault            = ""
	StrategyBFS                = "bfs"
	StrategyBFSEndpoint        = "bfs-endpoint"
	StrategyFastBFS            = "fast-bfs"
	StrategyFastBFSEndpoint    = "fast-bfs-endpoint"
	StrategyTryDeep            = "try-deep"
	StrategyRandomWalk         = "random-walk"
	StrategyRandomWalkEndpoint = "random-walk-endpoint"
	StrategyBackward           = "backward"
)

// Selection mode names accepted by SelectionConfig.Mode. The empty string selects
// SelectionHeuristic.
const (
	SelectionHeuristic = "heuristic"
	SelectionRandom    = "random"
	SelectionFirst     = "first"
)

// ValidStrategy indicates the given name is a known synthesis strategy.
func ValidStrategy(name string) bool {
	switch name {
	case StrategyDefault, StrategyBFS, StrategyBFSEndpoint, StrategyFastBFS,
		StrategyFastBFSEndpoint, StrategyTryDeep, StrategyRandomWalk,
		StrategyRandomWalkEndpoint, StrategyBackward:
		return true
	}
	return false
}

// ValidSelectionMode indicates the given name is a known selection mode.
func ValidSelectionMode(name string) bool {
	switch name {
	case "", SelectionHeuristic, SelectionRandom, SelectionFirst:
		return true
	}
	return false
}

// GetDefaultProjectConfig obtains a default project configuration for the given library name.
func GetDefaultProjectConfig(library string) *ProjectConfig {
	return &ProjectConfig{
		Library: library,
		Synthesis: SynthesisConfig{
			Strategy:               StrategyDefault,
			MaxSequenceLength:      3,
			RandomWalkSteps:        100000,
			RandomWalkMaxDepth:     0,
			MaxPoolCoverageProduct: 100000,
			RandomSeed:             0,
			CoverageRepair:         true,
			DefaultConcreteType:    "i32",
		},
		Selection: SelectionConfig{
			Mode:               SelectionHeuristic,
			MaxSequences:       0,
			StopAtAllFunctions: false,
		},
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			LogDirectory:         "",
		},
	}
}
