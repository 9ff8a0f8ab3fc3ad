package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/CTAG07/chaintext/pkg/corpus"
	"github.com/CTAG07/chaintext/pkg/markov"
	"github.com/CTAG07/chaintext/pkg/report"
	"github.com/CTAG07/chaintext/pkg/tokenizer"
)

// defaultInputPath is the corpus file report mode reads when neither -input
// nor -corpus selects a source.
const defaultInputPath = "./input.txt"

// runModel is one configured run together with the model trained for it and
// the token sequence it was trained on.
type runModel struct {
	run    RunConfig
	level  tokenizer.Level
	tok    tokenizer.Tokenizer
	model  *markov.Model
	tokens []string
}

// buildRunModel tokenizes normalized corpus text at the run's level and
// trains a chain of the run's order on it. An empty run name defaults to the
// level string.
func buildRunModel(run RunConfig, normalized string, logger *slog.Logger) (*runModel, error) {
	level, err := tokenizer.ParseLevel(run.Level)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", run.Name, err)
	}
	if run.Name == "" {
		run.Name = string(level)
	}

	model, err := markov.New(run.Order)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", run.Name, err)
	}
	model.SetLogger(logger)

	tok := tokenizer.New(level)
	tokens := tok.Tokens(normalized)
	model.Train(tokens)

	return &runModel{run: run, level: level, tok: tok, model: model, tokens: tokens}, nil
}

// seedWindow returns the generation starting point taken from the head of the
// corpus: the tokens before the state window, and the final order tokens that
// form the state itself. A zero seed length means exactly the order.
func (rm *runModel) seedWindow() ([]string, markov.State, error) {
	seedLen := rm.run.SeedLength
	if seedLen == 0 {
		seedLen = rm.run.Order
	}
	if seedLen < rm.run.Order {
		return nil, nil, fmt.Errorf("run %q: seed length %d is shorter than order %d", rm.run.Name, seedLen, rm.run.Order)
	}
	if seedLen > len(rm.tokens) {
		return nil, nil, fmt.Errorf("run %q: seed length %d exceeds the corpus (%d tokens)", rm.run.Name, seedLen, len(rm.tokens))
	}
	split := seedLen - rm.run.Order
	return rm.tokens[:split], markov.State(rm.tokens[split:seedLen]), nil
}

// generateText runs one generation pass and joins the tokens, seed included,
// into display text.
func (rm *runModel) generateText(rng *rand.Rand) (string, error) {
	prefix, state, err := rm.seedWindow()
	if err != nil {
		return "", err
	}
	generated, err := rm.model.Generate(state, rm.run.GenerateLength, rng)
	if err != nil {
		return "", fmt.Errorf("run %q: %w", rm.run.Name, err)
	}
	full := make([]string, 0, len(prefix)+len(generated))
	full = append(full, prefix...)
	full = append(full, generated...)
	return rm.tok.Join(full), nil
}

// defaultProbe derives a probe from the corpus head: the first state window
// and the token that actually followed it. It reports false when the corpus
// has no complete window.
func (rm *runModel) defaultProbe() (ProbeConfig, bool) {
	if len(rm.tokens) <= rm.run.Order {
		return ProbeConfig{}, false
	}
	state := make([]string, rm.run.Order)
	copy(state, rm.tokens[:rm.run.Order])
	return ProbeConfig{Run: rm.run.Name, State: state, Next: rm.tokens[rm.run.Order]}, true
}

// loadCorpusText resolves the corpus text for a command. A -corpus name reads
// from the library, a -input path reads a file, and report mode falls back to
// ./input.txt when neither is given. With fallback disabled, no selection
// returns empty strings and no error.
func loadCorpusText(store *corpus.Store, inputPath, corpusName string, fallback bool) (string, string, error) {
	if corpusName != "" {
		text, err := store.Content(context.Background(), corpusName)
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", fmt.Errorf("corpus %q is not in the library", corpusName)
		}
		if err != nil {
			return "", "", fmt.Errorf("failed to read corpus %q: %w", corpusName, err)
		}
		return text, "corpus:" + corpusName, nil
	}

	path := inputPath
	if path == "" {
		if !fallback {
			return "", "", nil
		}
		path = defaultInputPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read corpus file: %w", err)
	}
	return string(data), path, nil
}

// runReport trains the configured models over one corpus, generates a
// sequence per run, appends the probability probes, and writes the report.
func runReport(config *Config, logger *slog.Logger, store *corpus.Store, inputPath, corpusName string) error {
	text, source, err := loadCorpusText(store, inputPath, corpusName, true)
	if err != nil {
		return err
	}
	logger.Info("Corpus loaded", "source", source, "size_bytes", len(text))

	normalized := tokenizer.Normalize(text)

	// One shared rng keeps a seeded report reproducible as a whole; each run
	// draws from where the previous one left off.
	var rng *rand.Rand
	if config.Report.RandomSeed != 0 {
		rng = rand.New(rand.NewPCG(config.Report.RandomSeed, 0))
	}

	models := make([]*runModel, 0, len(config.Report.Runs))
	byName := make(map[string]*runModel, len(config.Report.Runs))
	for _, run := range config.Report.Runs {
		rm, err := buildRunModel(run, normalized, logger)
		if err != nil {
			return err
		}
		if _, ok := byName[rm.run.Name]; ok {
			return fmt.Errorf("duplicate run name %q", rm.run.Name)
		}
		models = append(models, rm)
		byName[rm.run.Name] = rm
	}

	rep := report.New()
	for _, rm := range models {
		sequence, err := rm.generateText(rng)
		if err != nil {
			return err
		}
		rep.AddSequence(fmt.Sprintf("Generated %s Sequence:", rm.level.DisplayName()), sequence)

		stats := rm.model.Stats()
		logger.Info("Sequence generated",
			"run", rm.run.Name,
			"order", stats.Order,
			"states", stats.States,
			"vocabulary", stats.VocabSize,
		)
	}

	probes := config.Report.Probes
	if len(probes) == 0 {
		for _, rm := range models {
			if probe, ok := rm.defaultProbe(); ok {
				probes = append(probes, probe)
			}
		}
	}
	for _, probe := range probes {
		rm, ok := byName[probe.Run]
		if !ok {
			return fmt.Errorf("probe references unknown run %q", probe.Run)
		}
		rep.AddProbability(probe.State, probe.Next, rm.model.Probability(probe.State, probe.Next))
	}

	if err := rep.WriteFile(config.Report.OutputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("Report written", "path", config.Report.OutputPath, "blocks", rep.Len())
	return nil
}
