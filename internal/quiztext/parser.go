// Package quiztext parses the free-form quiz text produced by a language model.
//
// The expected layout is a sequence of blocks separated by blank lines. Each
// block holds a question line followed by four choice lines, and the correct
// choice carries a sentinel marker (an asterisk by default):
//
//	What color is the sky?
//	a) *Blue
//	b) Green
//	c) Red
//	d) Yellow
package quiztext

import (
	"fmt"
	"regexp"
	"strings"

	"tubequiz/internal/domain"
)

// DefaultSentinel marks the correct choice in generated quiz text.
const DefaultSentinel = "*"

// linesPerBlock is the question line plus one line per choice.
const linesPerBlock = 1 + domain.ChoicesPerQuestion

// Diagnostic points at a block that was dropped or parsed with a fallback.
type Diagnostic = domain.ParseDiagnostic

// Options tune how quiz text is interpreted.
type Options struct {
	// Sentinel marks the correct choice. Empty means DefaultSentinel.
	Sentinel string
	// RequireMarker drops blocks without a marked choice instead of
	// assuming the first choice is correct.
	RequireMarker bool
}

// Result is the outcome of parsing one model response.
type Result struct {
	Questions   []domain.Question
	Diagnostics []Diagnostic
	// Blocks is the number of non-empty blocks found in the input.
	Blocks int
}

var (
	blockSeparator = regexp.MustCompile(`\n[ \t]*\n`)
	ordinalPrefix  = regexp.MustCompile(`(?i)^(?:q(?:uestion)?\s*)?\d+\s*[.):\-]\s*`)
	choiceLabel    = regexp.MustCompile(`^(?:[-•]\s+)?(?:\(?[A-Da-d1-4][.)\]:]\s+)?`)
)

// Parse splits text into quiz questions. It never fails: blocks that cannot
// be used are reported in Result.Diagnostics.
func Parse(text string, opts Options) Result {
	sentinel := opts.Sentinel
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	var res Result
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range blockSeparator.Split(normalized, -1) {
		lines := splitLines(raw)
		if len(lines) == 0 {
			continue
		}
		res.Blocks++
		block := res.Blocks

		if len(lines) < linesPerBlock {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Block:   block,
				Kind:    domain.DiagnosticTooShort,
				Message: fmt.Sprintf("block %d has %d lines, need at least %d", block, len(lines), linesPerBlock),
			})
			continue
		}

		q, markers := parseBlock(lines, sentinel)
		switch {
		case markers == 0 && opts.RequireMarker:
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Block:   block,
				Kind:    domain.DiagnosticUnmarked,
				Message: fmt.Sprintf("block %d has no marked answer and was dropped", block),
			})
			continue
		case markers == 0:
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Block:   block,
				Kind:    domain.DiagnosticUnmarked,
				Message: fmt.Sprintf("block %d has no marked answer; assuming the first choice", block),
			})
		case markers > 1:
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Block:   block,
				Kind:    domain.DiagnosticMultipleMarkers,
				Message: fmt.Sprintf("block %d has %d marked answers; using the first", block, markers),
			})
		}
		res.Questions = append(res.Questions, q)
	}
	return res
}

// parseBlock builds a question from the first five lines of a block and
// returns it together with the number of sentinel-marked choices.
func parseBlock(lines []string, sentinel string) (domain.Question, int) {
	q := domain.Question{
		Text:    cleanQuestion(lines[0]),
		Choices: make([]string, 0, domain.ChoicesPerQuestion),
	}

	markers := 0
	for _, line := range lines[1:linesPerBlock] {
		marked := strings.Contains(line, sentinel)
		choice := cleanChoice(strings.ReplaceAll(line, sentinel, ""))
		q.Choices = append(q.Choices, choice)
		if !marked {
			continue
		}
		markers++
		if markers == 1 {
			q.CorrectAnswer = choice
			q.AnswerMarked = true
		}
	}

	if markers == 0 {
		q.CorrectAnswer = q.Choices[0]
	}
	return q, markers
}

func splitLines(block string) []string {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func cleanQuestion(line string) string {
	line = strings.Trim(line, "*# \t")
	line = ordinalPrefix.ReplaceAllString(line, "")
	return strings.Trim(line, "*# \t")
}

func cleanChoice(line string) string {
	line = strings.TrimSpace(line)
	line = choiceLabel.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}
