// Command metasearch is the demonstration driver for the metapopulation
// engine: it wires internal/toyexpr's arithmetic-expression representation,
// scorer, and hill-climbing optimiser into internal/engine and writes the
// resulting candidates as the plain-text dump spec.md §6 describes. Grounded
// on cmd/bench/main.go's flag-parsing-then-run shape from the teacher pack.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/opencog/metapop/internal/config"
	"github.com/opencog/metapop/internal/contracts"
	"github.com/opencog/metapop/internal/deme"
	"github.com/opencog/metapop/internal/engine"
	"github.com/opencog/metapop/internal/merge"
	"github.com/opencog/metapop/internal/metapop"
	"github.com/opencog/metapop/internal/obslog"
	"github.com/opencog/metapop/internal/rng"
	"github.com/opencog/metapop/internal/selector"
	"github.com/opencog/metapop/internal/toyexpr"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file (optional)")
		seed       = flag.Int64("seed", 1, "RNG seed")
		maxEvals   = flag.Int("max-evals", 20000, "total evaluation budget")
		outPath    = flag.String("out", "", "candidate dump path (default: stdout)")
	)
	flag.Parse()

	if err := run(*configPath, *seed, *maxEvals, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, "metasearch:", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, maxEvals int, outPath string) error {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := obslog.NewProduction()
	if err != nil {
		return err
	}

	target := func(x float64) float64 { return x*x + 1 }
	samples := make([]float64, 11)
	for i := range samples {
		samples[i] = float64(i-5) / 2
	}
	sc := toyexpr.Scorer{Samples: samples, Target: target, K: cfg.ComplexityWeight}

	store := metapop.NewStore(cfg.ComplexityWeight)
	seedTree := toyexpr.NewTree(toyexpr.Branch(toyexpr.Add, toyexpr.VarLeaf(), toyexpr.Leaf(1)))
	store.Insert(metapop.NewEntry(seedTree, nil, sc.Score(seedTree)))

	visited := selector.NewVisitedSet()
	src := rng.New(seed)

	pipeline := deme.New(
		deme.Config{
			MinPool:               cfg.MinPool,
			MaxCandidates:         cfg.MaxCandidates,
			ReduceAll:             cfg.ReduceAll,
			Revisit:               cfg.Revisit,
			IncludeDominated:      cfg.IncludeDominated,
			UseDiversityPenalty:   cfg.UseDiversityPenalty,
			ComplexityTemperature: cfg.ComplexityTemperature,
			ComplexityWeight:      cfg.ComplexityWeight,
			Jobs:                  cfg.Jobs,
			Arity:                 1,
		},
		log,
		store,
		visited,
		contracts.RepresentationBuilder(toyexpr.Build),
		nil, // no feature selector in this toy domain
		sc,
		sc.AsBehavioral(),
		toyexpr.HillClimber{Rnd: src.Sub(0)},
		nil, // no ignored operators by default
		nil, nil,
	)

	merger := merge.New(merge.Config{
		MinPool:               cfg.MinPool,
		Offset:                cfg.Offset,
		ComplexityTemperature: cfg.ComplexityTemperature,
		IncludeDominated:      cfg.IncludeDominated,
	}, store, src.Sub(1), nil, nil)

	eng := engine.New(engine.Config{
		Jobs: cfg.Jobs,
		SelectorConfig: selector.Config{
			ComplexityWeight:      cfg.ComplexityWeight,
			ComplexityTemperature: cfg.ComplexityTemperature,
			UseDiversityPenalty:   cfg.UseDiversityPenalty,
		},
	}, log, store, pipeline, merger, src.Sub(2))

	if err := eng.Run(context.Background(), maxEvals); err != nil {
		log.Warn("run ended with error", zap.Error(err))
	}

	out := os.Stdout
	if outPath != "" {
		f, ferr := os.Create(outPath)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		out = f
	}
	return dumpCandidates(out, store)
}

// dumpCandidates writes one candidate per line, "<score> <complexity>
// <tree>", as spec.md §6 describes, highest weighted score first.
func dumpCandidates(w *os.File, store *metapop.Store) error {
	type row struct {
		w    float64
		c    int
		tree toyexpr.Tree
	}
	var rows []row
	store.Each(func(_ int, e *metapop.Entry) bool {
		rows = append(rows, row{w: store.Weighted(e), c: e.Composite.C, tree: e.Tree.(toyexpr.Tree)})
		return true
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].w > rows[j].w })
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%g %d %s\n", r.w, r.c, r.tree); err != nil {
			return err
		}
	}
	return nil
}
