// Package report assembles the plain-text output of a chaintext run:
// generated sequences and probability lines, rendered in insertion order and
// written atomically to disk.
package report

import (
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// Report accumulates titled sequence sections and probability lines as
// blocks. Blocks render in the order they were added, separated by blank
// lines.
type Report struct {
	blocks []string
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// AddSequence appends a block holding generated text under a title line.
func (r *Report) AddSequence(title, text string) {
	r.blocks = append(r.blocks, title+"\n"+text)
}

// AddProbability appends a line reporting the probability that next follows
// the given state. The state renders in quoted tuple form and the value in
// its shortest exact decimal form.
func (r *Report) AddProbability(state []string, next string, value float64) {
	var sb strings.Builder
	sb.WriteString("Probability of '")
	sb.WriteString(next)
	sb.WriteString("' following (")
	for i, tok := range state {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('\'')
		sb.WriteString(tok)
		sb.WriteByte('\'')
	}
	sb.WriteString("): ")
	sb.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	r.blocks = append(r.blocks, sb.String())
}

// Len returns the number of blocks added so far.
func (r *Report) Len() int {
	return len(r.blocks)
}

// String renders the report with one blank line between consecutive blocks.
func (r *Report) String() string {
	return strings.Join(r.blocks, "\n\n")
}

// WriteFile atomically writes the rendered report to path, so readers never
// observe a partially written report.
func (r *Report) WriteFile(path string) error {
	return atomic.WriteFile(path, strings.NewReader(r.String()))
}
