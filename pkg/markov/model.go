package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	// ErrInvalidOrder is returned by New when the requested order is less than 1.
	ErrInvalidOrder = errors.New("model order must be at least 1")

	// ErrSeedLength is returned by Generate when the seed does not contain
	// exactly one token per order position.
	ErrSeedLength = errors.New("seed length must equal model order")
)

// counts maps a next-token ID to the number of times it was observed after
// some state. Every stored count is positive.
type counts map[int]int

// total returns the sum of all counts, i.e. how many times the owning state
// was observed as a window start.
func (c counts) total() int {
	t := 0
	for _, n := range c {
		t += n
	}
	return t
}

// Model is a fixed-order Markov chain over tokens. It interns token strings
// to dense integer IDs and keeps one count table per observed state.
type Model struct {
	order  int
	vocab  *vocab
	table  map[string]counts
	logger *slog.Logger
}

// New creates an empty Model of the given order. The order is the number of
// consecutive tokens that make up a state and must be at least 1.
func New(order int) (*Model, error) {
	if order < 1 {
		return nil, fmt.Errorf("cannot create model of order %d: %w", order, ErrInvalidOrder)
	}
	return &Model{
		order:  order,
		vocab:  newVocab(),
		table:  make(map[string]counts),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Order returns the order the model was created with.
func (m *Model) Order() int {
	return m.order
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
// Providing a `log/slog.Logger` will enable logging for training, generation,
// and pruning.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Probability returns the empirical probability that next follows state,
// computed as the exact ratio of the observed count for next to the total
// observations for state. It returns 0 when the state was never observed,
// when next never followed it, or when state does not have order tokens.
func (m *Model) Probability(state State, next string) float64 {
	c := m.lookup(state)
	if len(c) == 0 {
		return 0
	}
	nextID, ok := m.vocab.id(next)
	if !ok {
		return 0
	}
	total := c.total()
	if total == 0 {
		return 0
	}
	return float64(c[nextID]) / float64(total)
}

// lookup resolves state to its count table. It returns nil when any token of
// the state is outside the vocabulary or the state was never observed.
func (m *Model) lookup(state State) counts {
	ids, ok := m.stateIDs(state)
	if !ok {
		return nil
	}
	return m.table[string(appendStateKey(nil, ids))]
}
