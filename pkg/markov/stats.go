package markov

// ModelStats holds aggregated statistics for a single Markov model.
type ModelStats struct {
	Order        int // The order the model was created with.
	States       int // The number of states with at least one observation.
	Transitions  int // The number of unique state->next_token links.
	Observations int // The sum of counts of all links; the total number of trained windows.
	VocabSize    int // The number of unique tokens interned.
}

// Stats returns a snapshot of aggregate statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Order:     m.order,
		States:    len(m.table),
		VocabSize: m.vocab.size(),
	}
	for _, c := range m.table {
		stats.Transitions += len(c)
		stats.Observations += c.total()
	}
	return stats
}
