package markov

import (
	"sort"
	"strconv"
)

// State is an ordered tuple of tokens identifying one row of a model's
// transition table. Its length must equal the order of the model it is used
// with; tuples of any other length match nothing.
type State []string

// vocab interns token strings to dense integer IDs assigned in first-seen
// order. The IDs double as the candidate ordering during sampling, which
// keeps generation reproducible for identical training input.
type vocab struct {
	ids   map[string]int
	texts []string
}

func newVocab() *vocab {
	return &vocab{ids: make(map[string]int)}
}

// intern returns the ID for text, assigning the next free ID on first sight.
func (v *vocab) intern(text string) int {
	if id, ok := v.ids[text]; ok {
		return id
	}
	id := len(v.texts)
	v.ids[text] = id
	v.texts = append(v.texts, text)
	return id
}

// id looks up a token string and reports whether it has been interned.
func (v *vocab) id(text string) (int, bool) {
	id, ok := v.ids[text]
	return id, ok
}

// text returns the token string for an interned ID.
func (v *vocab) text(id int) string {
	return v.texts[id]
}

func (v *vocab) size() int {
	return len(v.texts)
}

// appendStateKey renders token IDs as a space-separated key into keyBuf.
// Encoding IDs rather than raw tokens keeps keys unambiguous no matter what
// characters the tokens contain.
func appendStateKey(keyBuf []byte, ids []int) []byte {
	for j, tokenID := range ids {
		if j > 0 {
			keyBuf = append(keyBuf, ' ')
		}
		keyBuf = strconv.AppendInt(keyBuf, int64(tokenID), 10)
	}
	return keyBuf
}

// stateIDs resolves the tokens of state to their interned IDs. The second
// return is false when any token has never been seen, in which case the state
// cannot have an entry in the table.
func (m *Model) stateIDs(state State) ([]int, bool) {
	ids := make([]int, len(state))
	for i, tok := range state {
		id, ok := m.vocab.id(tok)
		if !ok {
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// chainToken pairs a candidate next-token ID with its observed count.
type chainToken struct {
	id   int
	freq int
}

// nextTokens returns the candidate continuations for a state key ordered by
// token ID, along with the sum of their counts. A nil slice and a total of 0
// mean the key is a dead end.
func (m *Model) nextTokens(key string) ([]chainToken, int) {
	c := m.table[key]
	if len(c) == 0 {
		return nil, 0
	}
	tokens := make([]chainToken, 0, len(c))
	totalFreq := 0
	for id, freq := range c {
		tokens = append(tokens, chainToken{id: id, freq: freq})
		totalFreq += freq
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].id < tokens[j].id
	})
	return tokens, totalFreq
}

// Transitions returns a copy of the observed continuations for a state as a
// token-to-count map. It returns nil when the state was never observed.
func (m *Model) Transitions(state State) map[string]int {
	c := m.lookup(state)
	if len(c) == 0 {
		return nil
	}
	out := make(map[string]int, len(c))
	for id, n := range c {
		out[m.vocab.text(id)] = n
	}
	return out
}
