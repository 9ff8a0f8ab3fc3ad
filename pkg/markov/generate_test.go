package markov

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	m := newTestModel(t, 3, aliceTokens)

	// Every state in this corpus has exactly one continuation, so the walk
	// replays the corpus and stops at the final window's dead end.
	got, err := m.Generate(State{"alice", "was", "beginning"}, 10, testRNG())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(got, aliceTokens) {
		t.Errorf("Generate() = %v, want %v", got, aliceTokens)
	}
}

func TestGenerateNilRNG(t *testing.T) {
	m := newTestModel(t, 3, aliceTokens)

	// A nil rng gets a freshly seeded source; on a single-path corpus the
	// output is still fully determined.
	got, err := m.Generate(State{"alice", "was", "beginning"}, 2, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{"alice", "was", "beginning", "to", "get"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want %v", got, want)
	}
}

func TestGenerateSeedLength(t *testing.T) {
	m := newTestModel(t, 3, aliceTokens)

	testCases := []struct {
		name string
		seed State
	}{
		{name: "Too short", seed: State{"alice", "was"}},
		{name: "Too long", seed: State{"alice", "was", "beginning", "to"}},
		{name: "Empty", seed: State{}},
		{name: "Nil", seed: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := m.Generate(tc.seed, 5, testRNG())
			if !errors.Is(err, ErrSeedLength) {
				t.Errorf("Generate(%v) error = %v, want ErrSeedLength", tc.seed, err)
			}
			if out != nil {
				t.Errorf("Generate(%v) returned output alongside an error: %v", tc.seed, out)
			}
		})
	}
}

func TestGenerateDeadEnd(t *testing.T) {
	m := newTestModel(t, 3, aliceTokens)

	// The final window of the corpus has no recorded continuation.
	got, err := m.Generate(State{"get", "very", "tired"}, 10, testRNG())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{"get", "very", "tired"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want just the seed %v", got, want)
	}

	// Seed tokens outside the vocabulary are an immediate dead end, not an error.
	got, err = m.Generate(State{"white", "rabbit", "hole"}, 10, testRNG())
	if err != nil {
		t.Fatalf("Generate with unknown seed failed: %v", err)
	}
	want = []string{"white", "rabbit", "hole"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want just the seed %v", got, want)
	}
}

func TestGenerateLengthBounds(t *testing.T) {
	// "a" and "b" alternate forever, so walks never hit a dead end.
	m := newTestModel(t, 1, strings.Fields("a b a b a b a"))

	rng := testRNG()
	for _, length := range []int{0, 1, 5, 50} {
		out, err := m.Generate(State{"a"}, length, rng)
		if err != nil {
			t.Fatalf("Generate(length=%d) failed: %v", length, err)
		}
		if len(out) != 1+length {
			t.Errorf("Generate(length=%d) returned %d tokens, want %d", length, len(out), 1+length)
		}
	}

	// A negative length produces the seed alone.
	out, err := m.Generate(State{"a"}, -3, rng)
	if err != nil {
		t.Fatalf("Generate(length=-3) failed: %v", err)
	}
	if !reflect.DeepEqual(out, []string{"a"}) {
		t.Errorf("Generate(length=-3) = %v, want [a]", out)
	}
}

func TestGenerateObservedTransitionsOnly(t *testing.T) {
	tokens := strings.Fields("the cat sat on the mat the cat ran off the mat and the dog sat on the rug")
	m := newTestModel(t, 2, tokens)

	out, err := m.Generate(State{"the", "cat"}, 30, testRNG())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(out) < 2 || len(out) > 32 {
		t.Fatalf("Generate returned %d tokens, want between 2 and 32", len(out))
	}
	for i := m.Order(); i < len(out); i++ {
		state := State(out[i-m.Order() : i])
		if p := m.Probability(state, out[i]); p <= 0 {
			t.Errorf("generated transition %v -> %q was never observed", state, out[i])
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	tokens := strings.Fields("the cat sat on the mat the cat ran off the mat and the dog sat on the rug")
	m := newTestModel(t, 2, tokens)

	first, err := m.Generate(State{"the", "cat"}, 25, rand.New(rand.NewPCG(11, 13)))
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := m.Generate(State{"the", "cat"}, 25, rand.New(rand.NewPCG(11, 13)))
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same rng seed produced different sequences:\n%v\n%v", first, second)
	}
}

func TestGenerateSampling(t *testing.T) {
	// State "a" continues to "b" twice and "c" once; state "b" always
	// returns to "a".
	m := newTestModel(t, 1, strings.Fields("a b a b a c"))

	t.Run("TemperatureZero", func(t *testing.T) {
		out, err := m.Generate(State{"a"}, 4, testRNG(), WithTemperature(0))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		want := []string{"a", "b", "a", "b", "a"}
		if !reflect.DeepEqual(out, want) {
			t.Errorf("deterministic walk = %v, want %v", out, want)
		}
	})

	t.Run("TopK", func(t *testing.T) {
		out, err := m.Generate(State{"a"}, 4, testRNG(), WithTopK(1))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		want := []string{"a", "b", "a", "b", "a"}
		if !reflect.DeepEqual(out, want) {
			t.Errorf("top-1 walk = %v, want %v", out, want)
		}
	})

	t.Run("TemperatureScaled", func(t *testing.T) {
		out, err := m.Generate(State{"a"}, 4, testRNG(), WithTemperature(0.5))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		// Temperature reweights the draw but can only pick observed tokens.
		for i := 1; i < len(out); i++ {
			if p := m.Probability(State{out[i-1]}, out[i]); p <= 0 {
				t.Errorf("transition %q -> %q was never observed", out[i-1], out[i])
			}
		}
	})
}

func BenchmarkGenerate(b *testing.B) {
	corpus := createBenchmarkCorpus()
	m, err := New(2)
	if err != nil {
		b.Fatal(err)
	}
	m.Train(corpus)
	seed := State(corpus[:2])
	rng := rand.New(rand.NewPCG(1, 2))

	genOpts := map[string][]GenerateOption{
		"Simple":          nil,
		"WithTemp":        {WithTemperature(0.7)},
		"WithTopK":        {WithTopK(10)},
		"WithTempAndTopK": {WithTemperature(0.7), WithTopK(10)},
	}

	for name, opts := range genOpts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.Generate(seed, 50, rng, opts...); err != nil {
					b.Fatalf("Generate() failed: %v", err)
				}
			}
		})
	}
}
