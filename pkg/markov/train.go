package markov

import (
	"log/slog"
)

// Train records every transition observed in tokens: each run of order
// consecutive tokens is a state, and the token immediately after it is
// counted as one of that state's continuations. Counts accumulate across
// calls, but windows never span two calls. A sequence of order tokens or
// fewer contains no complete window and leaves the model unchanged.
func (m *Model) Train(tokens []string) {
	if len(tokens) <= m.order {
		m.logger.Debug("Training skipped, sequence has no complete window",
			slog.Int("tokens", len(tokens)),
			slog.Int("order", m.order),
		)
		return
	}

	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = m.vocab.intern(tok)
	}

	var keyBuf []byte
	windows := 0
	for i := 0; i+m.order < len(ids); i++ {
		keyBuf = appendStateKey(keyBuf[:0], ids[i:i+m.order])
		key := string(keyBuf)

		c := m.table[key]
		if c == nil {
			c = make(counts)
			m.table[key] = c
		}
		c[ids[i+m.order]]++
		windows++
	}

	m.logger.Info("Training completed",
		slog.Int("tokens", len(tokens)),
		slog.Int("windows", windows),
		slog.Int("states", len(m.table)),
		slog.Int("vocabulary", m.vocab.size()),
	)
}
