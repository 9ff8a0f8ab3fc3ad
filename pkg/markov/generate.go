package markov

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
)

// generateOptions is used by Generate to configure default options.
type generateOptions struct {
	temperature float64
	topK        int
}

// GenerateOption is a function that configures generation parameters. It's
// used as a variadic argument to Generate.
type GenerateOption func(*generateOptions)

// WithTemperature adjusts the randomness of the token selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 increase randomness (making less frequent tokens more likely).
// Values < 1.0 decrease randomness (making more frequent tokens even more likely).
// A value of 0 or less results in deterministic selection (always choosing the most frequent token).
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the token selection pool to the top `k` most frequent
// tokens at each step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// Generate extends seed with up to length sampled tokens and returns the full
// sequence, seed included. The seed must contain exactly Order tokens. At each
// step the next token is drawn from the continuations observed after the
// current state, weighted by count; when the current state has no recorded
// continuations the walk stops early, which is not an error.
//
// rng is the randomness source for sampling. Passing the same seeded rng over
// the same model reproduces the same sequence; a nil rng uses a freshly
// seeded one.
func (m *Model) Generate(seed State, length int, rng *rand.Rand, opts ...GenerateOption) ([]string, error) {
	if len(seed) != m.order {
		return nil, fmt.Errorf("seed has %d tokens, model order is %d: %w", len(seed), m.order, ErrSeedLength)
	}

	options := &generateOptions{
		temperature: 1.0,
		topK:        0,
	}
	for _, opt := range opts {
		opt(options)
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if length < 0 {
		length = 0
	}

	result := make([]string, 0, m.order+length)
	result = append(result, seed...)

	prefix, ok := m.stateIDs(seed)
	if !ok {
		// A seed token that never entered the vocabulary cannot continue a chain.
		m.logger.Debug("Generation terminated due to dead-end",
			slog.Int("generated_length", 0),
		)
		return result, nil
	}

	var keyBuf []byte
	for generated := 0; generated < length; generated++ {
		keyBuf = appendStateKey(keyBuf[:0], prefix)
		key := string(keyBuf)

		choices, totalFreq := m.nextTokens(key)
		if len(choices) == 0 { // Dead end in chain
			m.logger.Debug("Generation terminated due to dead-end",
				slog.String("last_state", key),
				slog.Int("generated_length", generated),
			)
			return result, nil
		}

		nextToken := chooseNextToken(choices, totalFreq, rng, options)
		result = append(result, m.vocab.text(nextToken))
		prefix = append(prefix[1:], nextToken)
	}

	m.logger.Debug("Generation terminated by reaching length",
		slog.Int("length", length),
		slog.Int("generated_length", length),
	)
	return result, nil
}

// chooseNextToken abstracts the token selection logic from the generation loop.
func chooseNextToken(choices []chainToken, totalFreq int, rng *rand.Rand, options *generateOptions) int {
	var nextToken int

	// topK filtering
	if options.topK > 0 && options.topK < len(choices) {
		sort.Slice(choices, func(i, j int) bool {
			if choices[i].freq != choices[j].freq {
				return choices[i].freq > choices[j].freq
			}
			return choices[i].id < choices[j].id
		})
		choices = choices[:options.topK]
		totalFreq = 0
		for _, choice := range choices {
			totalFreq += choice.freq
		}
	}

	// temperature selection
	if options.temperature <= 0 { // Deterministic
		maxFreq := -1
		for _, choice := range choices {
			if choice.freq > maxFreq {
				maxFreq = choice.freq
				nextToken = choice.id
			}
		}
	} else if options.temperature == 1.0 { // Standard weighted random
		randChoice := rng.IntN(totalFreq)
		for _, choice := range choices {
			randChoice -= choice.freq
			if randChoice < 0 {
				nextToken = choice.id
				break
			}
		}
	} else { // Temperature-based sampling
		logProbabilities := make([]float64, len(choices))
		epsilon := -1e9
		for i, choice := range choices {
			lp := math.Log(float64(choice.freq)) / options.temperature
			logProbabilities[i] = lp
			if lp > epsilon {
				epsilon = lp
			}
		}
		var totalWeight float64
		weights := make([]float64, len(choices))
		for i, lp := range logProbabilities {
			w := math.Exp(lp - epsilon)
			weights[i] = w
			totalWeight += w
		}
		randChoice := rng.Float64() * totalWeight
		for i, choice := range choices {
			randChoice -= weights[i]
			if randChoice < 0 {
				nextToken = choice.id
				break
			}
		}
	}
	return nextToken
}
