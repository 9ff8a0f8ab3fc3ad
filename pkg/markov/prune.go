package markov

import (
	"log/slog"
)

// Prune removes all transitions from the model that have a count less than or
// equal to minCount, then drops any state left without continuations. This is
// useful for reducing the size of a model by removing rare, and often noisy,
// transitions. It returns the number of transitions removed.
//
// The vocabulary is left untouched; tokens stay interned even when every
// transition involving them is pruned.
func (m *Model) Prune(minCount int) int {
	removed := 0
	for key, c := range m.table {
		for id, n := range c {
			if n <= minCount {
				delete(c, id)
				removed++
			}
		}
		if len(c) == 0 {
			delete(m.table, key)
		}
	}

	m.logger.Info("Model pruned",
		slog.Int("min_count", minCount),
		slog.Int("transitions_removed", removed),
		slog.Int("states_remaining", len(m.table)),
	)
	return removed
}
