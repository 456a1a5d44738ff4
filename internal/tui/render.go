package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tubequiz/internal/domain"
)

var (
	colorTitle     = lipgloss.Color("33")
	colorMuted     = lipgloss.Color("242")
	colorCorrect   = lipgloss.Color("42")
	colorIncorrect = lipgloss.Color("196")
	colorCursor    = lipgloss.Color("212")
)

func renderQuiz(m Model, noColor bool) string {
	var b strings.Builder

	b.WriteString(stylize("Summary", noColor, colorTitle, true))
	b.WriteString("\n")
	b.WriteString(m.quiz.Summary)
	b.WriteString("\n\n")

	q := m.quiz.Questions[m.current]
	header := fmt.Sprintf("Question %d of %d", m.current+1, len(m.quiz.Questions))
	b.WriteString(stylize(header, noColor, colorTitle, true))
	b.WriteString("\n")
	b.WriteString(q.Text)
	b.WriteString("\n\n")

	for i, choice := range q.Choices {
		pointer := "  "
		if i == m.cursor[m.current] {
			pointer = stylize("> ", noColor, colorCursor, false)
		}
		radio := "( )"
		if m.selected[m.current] == choice {
			radio = "(•)"
		}
		b.WriteString(pointer + radio + " " + choice + "\n")
	}

	answered := len(m.selected)
	footer := fmt.Sprintf("\n%d/%d answered | ↑/↓ move | space select | ←/→ question | s submit | q quit",
		answered, len(m.quiz.Questions))
	b.WriteString(stylize(footer, noColor, colorMuted, false))
	return b.String()
}

func renderResults(r *domain.GradeResult, noColor bool) string {
	var b strings.Builder
	for _, item := range r.Items {
		b.WriteString(fmt.Sprintf("%d. %s\n", item.Index+1, item.Question))

		answer := item.UserAnswer
		if answer == "" {
			answer = "(no answer)"
		}
		b.WriteString("   Your answer: " + answer + "\n")

		if item.Status == domain.StatusCorrect {
			b.WriteString("   " + stylize(string(item.Status), noColor, colorCorrect, true) + "\n\n")
			continue
		}
		b.WriteString("   " + stylize(string(item.Status), noColor, colorIncorrect, true) +
			" (correct: " + item.CorrectAnswer + ")\n")
		switch {
		case item.Explanation != "":
			b.WriteString("   " + item.Explanation + "\n")
		case item.ExplanationError != nil:
			b.WriteString("   " + stylize("Explanation unavailable: "+item.ExplanationError.Message, noColor, colorMuted, false) + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(stylize(r.ScoreLine(), noColor, colorTitle, true))
	b.WriteString("\n" + stylize("Press q to exit.", noColor, colorMuted, false))
	return b.String()
}

func renderError(err error, noColor bool) string {
	return stylize("Error: ", noColor, colorIncorrect, true) + err.Error() + "\n"
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color, bold bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}
