package tokenizer

import (
	"reflect"
	"strings"
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Lowercase and punctuation", input: "Hello, World!", want: "hello world"},
		{name: "Newlines and tabs fold to spaces", input: "one\ntwo\tthree", want: "one two three"},
		{name: "Windows line endings", input: "a\r\nb", want: "a  b"},
		{name: "Apostrophes and hyphens dropped", input: "don't-stop", want: "dontstop"},
		{name: "Unicode punctuation", input: "«quoted»", want: "quoted"},
		{name: "Symbols dropped", input: "a+b=c", want: "abc"},
		{name: "Empty", input: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input       string
		want        Level
		expectError bool
	}{
		{input: "word", want: LevelWord},
		{input: "WORD", want: LevelWord},
		{input: "char", want: LevelChar},
		{input: "Character", want: LevelChar},
		{input: "sentence", expectError: true},
		{input: "", expectError: true},
	}

	for _, tc := range testCases {
		got, err := ParseLevel(tc.input)
		if tc.expectError {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected an error, got level %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestWordTokenizer(t *testing.T) {
	tok := New(LevelWord)
	if tok.Level() != LevelWord {
		t.Errorf("Level() = %q, want %q", tok.Level(), LevelWord)
	}

	got := tok.Tokens("alice was  beginning ")
	want := []string{"alice", "was", "beginning"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}

	if joined := tok.Join(want); joined != "alice was beginning" {
		t.Errorf("Join() = %q, want 'alice was beginning'", joined)
	}

	if got := tok.Tokens(""); len(got) != 0 {
		t.Errorf("Tokens of empty input = %v, want none", got)
	}
}

func TestCharTokenizer(t *testing.T) {
	tok := New(LevelChar)
	if tok.Level() != LevelChar {
		t.Errorf("Level() = %q, want %q", tok.Level(), LevelChar)
	}

	got := tok.Tokens("a b")
	want := []string{"a", " ", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v (spaces are tokens)", got, want)
	}

	// Multi-byte runes are single tokens.
	got = tok.Tokens("héllo")
	want = []string{"h", "é", "l", "l", "o"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}

	if joined := tok.Join(got); joined != "héllo" {
		t.Errorf("Join() = %q, want 'héllo'", joined)
	}

	if got := tok.Tokens(""); len(got) != 0 {
		t.Errorf("Tokens of empty input = %v, want none", got)
	}
}

func TestLevelDisplayName(t *testing.T) {
	if got := LevelWord.DisplayName(); got != "Word" {
		t.Errorf("LevelWord.DisplayName() = %q, want 'Word'", got)
	}
	if got := LevelChar.DisplayName(); got != "Character" {
		t.Errorf("LevelChar.DisplayName() = %q, want 'Character'", got)
	}
}

func FuzzNormalize(f *testing.F) {
	f.Add("Hello, World!")
	f.Add("one\ntwo\tthree")
	f.Add("«mixed» + ünïcødé?")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		out := Normalize(input)
		if strings.ContainsAny(out, "\n\r\t") {
			t.Errorf("Normalize(%q) left control whitespace in %q", input, out)
		}
		for _, r := range out {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				t.Errorf("Normalize(%q) left punctuation %q in %q", input, r, out)
			}
		}
	})
}
