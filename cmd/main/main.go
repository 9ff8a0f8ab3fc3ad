package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/CTAG07/chaintext/pkg/corpus"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// cliOptions collects the parsed command-line flags. The mode switches are
// mutually exclusive; the first of ingest/list/serve that is set wins, and
// none of them means report mode.
type cliOptions struct {
	configPath     string
	inputPath      string
	corpusName     string
	outputPath     string
	level          string
	order          int
	seedLength     int
	generateLength int
	randomSeed     uint64
	ingest         bool
	list           bool
	serve          bool
	showVersion    bool
}

func parseFlags() cliOptions {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "./config.json", "path to the JSON config file")
	flag.StringVar(&opts.inputPath, "input", "", "path to a corpus text file (report mode falls back to ./input.txt)")
	flag.StringVar(&opts.corpusName, "corpus", "", "name of a corpus in the library, used instead of -input")
	flag.StringVar(&opts.outputPath, "output", "", "override the configured report output path")
	flag.StringVar(&opts.level, "level", "", "run a single model at this level (word or char) instead of the configured runs")
	flag.IntVar(&opts.order, "order", 3, "chain order for the single -level run")
	flag.IntVar(&opts.seedLength, "seed-length", 0, "seed window length for the single -level run (0 means the order)")
	flag.IntVar(&opts.generateLength, "generate-length", 50, "tokens to generate beyond the seed for the single -level run")
	flag.Uint64Var(&opts.randomSeed, "random-seed", 0, "seed for generation randomness (0 means non-deterministic)")
	flag.BoolVar(&opts.ingest, "ingest", false, "store -input under -corpus in the library and exit")
	flag.BoolVar(&opts.list, "list", false, "list the corpus library and exit")
	flag.BoolVar(&opts.serve, "serve", false, "serve the HTTP API instead of writing a report")
	flag.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("chaintext %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		return
	}

	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(opts, baseLogger); err != nil {
		baseLogger.Error("chaintext failed", "error", err)
		os.Exit(1)
	}
}

// run loads the configuration, opens the corpus library, and dispatches to
// the selected mode.
func run(opts cliOptions, baseLogger *slog.Logger) error {
	config, err := LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.outputPath != "" {
		config.Report.OutputPath = opts.outputPath
	}
	if opts.randomSeed != 0 {
		config.Report.RandomSeed = opts.randomSeed
	}
	if opts.level != "" {
		// A -level flag replaces the configured runs with a single run built
		// from the sibling flags.
		config.Report.Runs = []RunConfig{{
			Name:           opts.level,
			Level:          opts.level,
			Order:          opts.order,
			SeedLength:     opts.seedLength,
			GenerateLength: opts.generateLength,
		}}
		config.Report.Probes = nil
	}

	var logLevel slog.Level
	switch strings.ToLower(config.Server.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	if err = os.MkdirAll(config.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := initDB(config.Server.CorpusDatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			baseLogger.Error("Failed to close database", "error", err)
		}
	}()

	if err = corpus.SetupSchema(db); err != nil {
		return fmt.Errorf("failed to setup corpus schema: %w", err)
	}
	store, err := corpus.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create corpus store: %w", err)
	}
	defer store.Close()
	store.SetLogger(logger)

	switch {
	case opts.ingest:
		return runIngest(store, opts.corpusName, opts.inputPath, logger)
	case opts.list:
		return runList(store)
	case opts.serve:
		return runServe(config, logger, store, opts.inputPath, opts.corpusName)
	default:
		return runReport(config, logger, store, opts.inputPath, opts.corpusName)
	}
}

// runIngest stores the file at inputPath in the corpus library under name.
func runIngest(store *corpus.Store, name, inputPath string, logger *slog.Logger) error {
	if name == "" {
		return fmt.Errorf("ingest requires -corpus to name the stored corpus")
	}
	if inputPath == "" {
		return fmt.Errorf("ingest requires -input to point at a corpus file")
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := store.Add(context.Background(), name, f)
	if err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}
	logger.Info("Corpus ingested", "corpus_name", info.Name, "size_bytes", info.Size)
	return nil
}

// runList prints the corpus library to stdout, one corpus per line.
func runList(store *corpus.Store) error {
	infos, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list corpora: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("corpus library is empty")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s\t%d bytes\t%s\n", info.Name, info.Size, info.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
