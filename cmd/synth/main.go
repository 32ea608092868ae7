// Command synth runs the type-synthesis pipeline: load a design task,
// retrieve seed mechanisms from the knowledge base, search for a topology
// satisfying every elemental function, and write trace artifacts plus a
// result report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codesymm/mechsynth/pkg/catalog"
	"github.com/codesymm/mechsynth/pkg/config"
	"github.com/codesymm/mechsynth/pkg/engine"
	"github.com/codesymm/mechsynth/pkg/logging"
	"github.com/codesymm/mechsynth/pkg/metrics"
	"github.com/codesymm/mechsynth/pkg/ranking"
	"github.com/codesymm/mechsynth/pkg/rules"
	"github.com/codesymm/mechsynth/pkg/task"
	"github.com/codesymm/mechsynth/pkg/visualization"
)

func main() {
	var (
		taskPath   = flag.String("task", "", "path to the design task JSON (required)")
		configPath = flag.String("config", "", "path to a YAML config file")
		provider   = flag.String("ranker", "", "override ranking provider: gemini, lexical or rule")
		blocksPath = flag.String("blocks", "", "override the building-blocks catalog")
		rulesPath  = flag.String("rules", "", "override the transformation-rules catalog")
		outputDir  = flag.String("output", "", "override the output directory")
		quiet      = flag.Bool("quiet", false, "suppress the styled report")
	)
	flag.Parse()

	if *taskPath == "" {
		fmt.Fprintln(os.Stderr, "usage: synth -task <task.json> [-config <config.yaml>] [-ranker gemini|lexical|rule]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{
		taskPath:   *taskPath,
		configPath: *configPath,
		provider:   *provider,
		blocksPath: *blocksPath,
		rulesPath:  *rulesPath,
		outputDir:  *outputDir,
		quiet:      *quiet,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "synth: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	taskPath   string
	configPath string
	provider   string
	blocksPath string
	rulesPath  string
	outputDir  string
	quiet      bool
}

func run(ctx context.Context, opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if opts.provider != "" {
		cfg.Ranking.Provider = opts.provider
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	reg := metrics.Default()

	tk, err := task.Load(opts.taskPath)
	if err != nil {
		return err
	}
	log.Info("task loaded",
		logging.TaskName(tk.Name),
		logging.Count(len(tk.EFs)),
		logging.Int("elements", len(tk.Elements)))

	blocks, ruleCatalog, err := loadCatalogs(opts)
	if err != nil {
		return err
	}

	seeds, err := findSeeds(ctx, cfg, tk, blocks, log, reg)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		log.Warn("no suitable seed mechanisms found", logging.TaskName(tk.Name))
		if !opts.quiet {
			printNoSeeds(os.Stdout, tk.Name)
		}
		return nil
	}

	eng := engine.New(ruleCatalog, engine.Options{
		MaxIterations: cfg.MaxIterations,
		MaxDOF:        cfg.MaxDOF,
	}, log, reg)

	results, err := eng.RunAll(ctx, seeds, tk.EFs)
	if err != nil {
		return err
	}

	writer := visualization.NewTraceWriter(visualization.DefaultLayoutConfig(), log)
	traceDirs := make([]string, len(results))
	for i, res := range results {
		dir, err := writer.WriteTrace(cfg.OutputDir, tk.Name, res.SeedName, res.Trace)
		if err != nil {
			return err
		}
		traceDirs[i] = dir
	}

	if err := writeResults(cfg.OutputDir, tk, results, traceDirs); err != nil {
		return err
	}
	if !opts.quiet {
		printReport(os.Stdout, tk, results, traceDirs)
	}
	return nil
}

func loadCatalogs(opts options) ([]catalog.Block, []rules.Rule, error) {
	blocks, err := catalog.DefaultBlocks()
	if opts.blocksPath != "" {
		blocks, err = catalog.LoadBlocks(opts.blocksPath)
	}
	if err != nil {
		return nil, nil, err
	}

	ruleCatalog, err := catalog.DefaultRules()
	if opts.rulesPath != "" {
		ruleCatalog, err = catalog.LoadRules(opts.rulesPath)
	}
	if err != nil {
		return nil, nil, err
	}
	return blocks, ruleCatalog, nil
}

// findSeeds retrieves search seeds with the configured provider. The rule
// provider matches behavior vectors exactly; the others rank the catalog
// and filter by score and motion intent.
func findSeeds(ctx context.Context, cfg config.Config, tk *task.Task, blocks []catalog.Block, log logging.Logger, reg *metrics.Registry) ([]engine.Seed, error) {
	anchor, ok := tk.FirstDirectActuation()
	if !ok {
		log.Warn("task declares no direct-actuation EF, nothing to anchor on", logging.TaskName(tk.Name))
		return nil, nil
	}

	if cfg.Ranking.Provider == config.ProviderRule {
		return ranking.RuleBasedSeeds(anchor, blocks, log)
	}

	var ranker ranking.Ranker = ranking.NewLexicalRanker(log, reg)
	if cfg.Ranking.Provider == config.ProviderGemini {
		gemini := ranking.NewGeminiRanker(ranking.GeminiConfig{
			Endpoint: cfg.Ranking.Endpoint,
			Model:    cfg.Ranking.Model,
			APIKey:   cfg.APIKey(),
			Timeout:  cfg.Ranking.Timeout,
		}, log, reg)
		ranker = ranking.WithFallback(gemini, ranking.NewLexicalRanker(log, reg), log)
	}

	ranked, err := ranker.Rank(ctx, tk.Description, tk.EFs, blocks)
	if err != nil {
		return nil, err
	}
	return ranking.SelectSeeds(ranked, blocks, tk.FullText(), ranking.SeedOptions{
		Threshold: cfg.SimilarityThreshold,
	}, log)
}
