// Package tui is the terminal quiz: it shows the summary, lets the user pick
// one choice per question and prints graded feedback.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tubequiz/internal/domain"
)

// LoadFunc produces the quiz, typically by running the pipeline.
type LoadFunc func(ctx context.Context) (*domain.QuizResult, error)

// GradeFunc grades the selected answers.
type GradeFunc func(ctx context.Context, questions []domain.Question, answers map[int]string) *domain.GradeResult

type phase int

const (
	phaseLoading phase = iota
	phaseQuiz
	phaseGrading
	phaseResults
	phaseFailed
)

// Options configures the quiz model.
type Options struct {
	NoColor bool
}

// Model is the Bubble Tea model for one quiz run.
type Model struct {
	ctx     context.Context
	load    LoadFunc
	grade   GradeFunc
	spinner spinner.Model
	noColor bool

	phase    phase
	quiz     *domain.QuizResult
	current  int
	cursor   []int
	selected map[int]string
	result   *domain.GradeResult
	err      error
}

// NewModel constructs a quiz model. ctx bounds the load and grade calls.
func NewModel(ctx context.Context, load LoadFunc, grade GradeFunc, opts Options) Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		ctx:      ctx,
		load:     load,
		grade:    grade,
		spinner:  s,
		noColor:  opts.NoColor,
		phase:    phaseLoading,
		selected: map[int]string{},
	}
}

// Err returns the failure that ended the run, if any.
func (m Model) Err() error {
	return m.err
}

// Result returns the graded result once the quiz was submitted.
func (m Model) Result() *domain.GradeResult {
	return m.result
}

type quizLoadedMsg struct {
	quiz *domain.QuizResult
	err  error
}

type gradedMsg struct {
	result *domain.GradeResult
}

// Init starts the spinner and the quiz load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadQuiz(m.ctx, m.load))
}

func loadQuiz(ctx context.Context, load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		quiz, err := load(ctx)
		return quizLoadedMsg{quiz: quiz, err: err}
	}
}

func gradeQuiz(ctx context.Context, grade GradeFunc, questions []domain.Question, answers map[int]string) tea.Cmd {
	return func() tea.Msg {
		return gradedMsg{result: grade(ctx, questions, answers)}
	}
}

// Update handles key presses and async results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(typed)
	case quizLoadedMsg:
		if typed.err == nil && (typed.quiz == nil || len(typed.quiz.Questions) == 0) {
			typed.err = domain.NewQuizParseError(0)
		}
		if typed.err != nil {
			m.phase = phaseFailed
			m.err = typed.err
			return m, tea.Quit
		}
		m.quiz = typed.quiz
		m.cursor = make([]int, len(typed.quiz.Questions))
		m.phase = phaseQuiz
		return m, nil
	case gradedMsg:
		m.result = typed.result
		m.phase = phaseResults
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseLoading && m.phase != phaseGrading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseQuiz:
		return m.handleQuizKey(msg)
	case phaseResults, phaseFailed:
		switch msg.String() {
		case "q", "esc", "enter":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleQuizKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.quiz.Questions[m.current]
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor[m.current] > 0 {
			m.cursor[m.current]--
		}
	case "down", "j":
		if m.cursor[m.current] < len(q.Choices)-1 {
			m.cursor[m.current]++
		}
	case " ", "x":
		m.selected[m.current] = q.Choices[m.cursor[m.current]]
	case "enter":
		m.selected[m.current] = q.Choices[m.cursor[m.current]]
		if m.current < len(m.quiz.Questions)-1 {
			m.current++
		}
	case "right", "l", "tab":
		if m.current < len(m.quiz.Questions)-1 {
			m.current++
		}
	case "left", "h", "shift+tab":
		if m.current > 0 {
			m.current--
		}
	case "s":
		m.phase = phaseGrading
		answers := make(map[int]string, len(m.selected))
		for i, a := range m.selected {
			answers[i] = a
		}
		return m, tea.Batch(m.spinner.Tick, gradeQuiz(m.ctx, m.grade, m.quiz.Questions, answers))
	}
	return m, nil
}

// View renders the current phase.
func (m Model) View() string {
	switch m.phase {
	case phaseLoading:
		return m.spinner.View() + " Fetching transcript and generating quiz..."
	case phaseGrading:
		return m.spinner.View() + " Grading answers..."
	case phaseFailed:
		return renderError(m.err, m.noColor)
	case phaseResults:
		return renderResults(m.result, m.noColor)
	default:
		return renderQuiz(m, m.noColor)
	}
}
