package markov

import (
	"go/build"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// aliceTokens is the opening of the word-level sample corpus used across
// tests. Every state in it has exactly one continuation, so walks over it are
// fully determined regardless of rng draws.
var aliceTokens = []string{"alice", "was", "beginning", "to", "get", "very", "tired"}

// newTestModel builds a model of the given order and trains it on tokens.
func newTestModel(t *testing.T, order int, tokens []string) *Model {
	t.Helper()
	m, err := New(order)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", order, err)
	}
	m.Train(tokens)
	return m
}

// testRNG returns a deterministically seeded source so tests are repeatable.
func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 42))
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files into a word corpus for benchmarking.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = strings.Fields("this is a fallback corpus for benchmarking. it is not very long but will prevent a crash.")
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = strings.Fields(sb.String())
	})
	return benchmarkCorpus
}
