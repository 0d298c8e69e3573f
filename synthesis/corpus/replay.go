package corpus

import (
	"math/rand"
	"sync"

	"github.com/pkg/errors"
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/generation"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
	"github.com/stheno-fuzz/stheno/utils/randomutils"
)

// ReplayStatistics reports the outcome of a seed replay: how the mined corpus relates to the
// catalog and how much of it survived admission.
type ReplayStatistics struct {
	// ChainsParsed is the number of chains in the input, ChainsDropped the number referencing at
	// least one function absent from the catalog, and ChainsReplayed the number actually fed to
	// the admission algorithm after the budget was applied.
	ChainsParsed   int
	ChainsDropped  int
	ChainsReplayed int

	// FunctionsInCorpus counts distinct catalog functions appearing in kept chains,
	// FunctionsCovered the subset some replayed prefix admitted, and FunctionsUncovered the
	// remainder, which the coverage-repair pass targets afterwards.
	FunctionsInCorpus  int
	FunctionsCovered   int
	FunctionsUncovered int
}

// Replayer replays mined seed chains against a search engine, seeding its pool with every
// admissible prefix of every kept chain.
type Replayer struct {
	engine *generation.Engine
	logger *logging.Logger
}

// NewReplayer creates a seed-chain replayer over the provided search engine.
func NewReplayer(engine *generation.Engine, logger *logging.Logger) *Replayer {
	if logger == nil {
		logger = logging.GlobalLogger
	}
	return &Replayer{engine: engine, logger: logger}
}

// Replay drops chains referencing functions the catalog does not know, applies the chain budget
// (maxChains, zero meaning unbounded) by frequency-weighted sampling without replacement, then
// replays each surviving chain prefix-by-prefix: every admissible prefix joins the pool and
// marks its final function visited, and the first inadmissible call abandons the rest of the
// chain. The engine's pool and visited set are reset first.
func (r *Replayer) Replay(chains []SeedChain, maxChains int, random *rand.Rand) (ReplayStatistics, error) {
	stats := ReplayStatistics{ChainsParsed: len(chains)}
	cat := r.engine.Graph().Catalog()

	// Chains referencing unknown functions are mined against another library version and are
	// dropped whole.
	frequency := make(map[string]int64)
	var kept []SeedChain
	for _, chain := range chains {
		known := true
		for _, name := range chain.Functions {
			if _, ok := cat.Lookup(name); !ok {
				r.logger.Debug("dropping seed chain with unknown function", logging.StructuredLogInfo{
					"function": name,
				})
				known = false
				break
			}
		}
		if !known {
			stats.ChainsDropped++
			continue
		}
		for _, name := range chain.Functions {
			frequency[name] += chain.Frequency
		}
		kept = append(kept, chain)
	}

	for name := range frequency {
		if _, ok := cat.Lookup(name); !ok {
			return stats, errors.Errorf("corpus function %q missing from catalog", name)
		}
	}
	stats.FunctionsInCorpus = len(frequency)

	if maxChains > 0 && len(kept) > maxChains {
		chooser := randomutils.NewWeightedRandomChooserWithRand[SeedChain](random, &sync.Mutex{})
		for _, chain := range kept {
			weight := chain.Frequency
			if weight < 1 {
				weight = 1
			}
			chooser.AddChoices(randomutils.NewWeightedRandomChoice(chain, weight))
		}
		kept = kept[:0]
		for i := 0; i < maxChains; i++ {
			chain, err := chooser.ChooseWithRemoval()
			if err != nil {
				return stats, err
			}
			kept = append(kept, *chain)
		}
	}
	stats.ChainsReplayed = len(kept)

	r.engine.ClearPool()
	r.engine.ResetVisited()

	for _, chain := range kept {
		seq := sequences.New()
		for _, name := range chain.Functions {
			function, _ := cat.Lookup(name)
			extended, ok := r.engine.TryExtend(seq, function)
			if !ok {
				break
			}
			r.engine.Push(extended)
			r.engine.MarkVisited(function)
			seq = extended
		}
	}

	for name := range frequency {
		function, _ := cat.Lookup(name)
		if r.engine.Visited(function) {
			stats.FunctionsCovered++
		}
	}
	stats.FunctionsUncovered = stats.FunctionsInCorpus - stats.FunctionsCovered

	r.logger.Info("seed replay finished", logging.StructuredLogInfo{
		"parsed":    stats.ChainsParsed,
		"dropped":   stats.ChainsDropped,
		"replayed":  stats.ChainsReplayed,
		"covered":   stats.FunctionsCovered,
		"uncovered": stats.FunctionsUncovered,
	})
	return stats, nil
}
