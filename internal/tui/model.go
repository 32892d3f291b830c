// Package tui plays a quiz session in the terminal with Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Model drives one session: it shows the current question, submits the
// highlighted option and switches to a report table when done.
type Model struct {
	sess    *quiz.Session
	cursor  int
	last    *quiz.AnswerRecord
	report  *quiz.Report
	table   table.Model
	styles  styles
	err     error
	noColor bool
}

type Options struct {
	NoColor bool
}

func NewModel(sess *quiz.Session, opts Options) Model {
	t := table.New(
		table.WithColumns(reportColumns(100)),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	return Model{sess: sess, table: t, styles: newStyles(opts.NoColor), noColor: opts.NoColor}
}

// Report is set once every question has been answered.
func (m Model) Report() (quiz.Report, bool) {
	if m.report == nil {
		return quiz.Report{}, false
	}
	return *m.report, true
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(typed.Width)
		m.table.SetHeight(max(typed.Height-6, 3))
		m.table.SetColumns(reportColumns(typed.Width))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	}
	if m.report != nil {
		return m, tea.Quit
	}
	q, ordinal, ok := m.sess.Current()
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Options)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.submit(ordinal, q.Options[m.cursor])
	default:
		if idx, ok := letterKey(k, len(q.Options)); ok {
			m.cursor = idx
			return m.submit(ordinal, q.Options[idx])
		}
	}
	return m, nil
}

func letterKey(k tea.KeyMsg, n int) (int, bool) {
	if k.Type != tea.KeyRunes || len(k.Runes) != 1 {
		return 0, false
	}
	r := k.Runes[0]
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	idx := int(r - 'a')
	return idx, idx >= 0 && idx < n
}

func (m Model) submit(ordinal int, choice string) (tea.Model, tea.Cmd) {
	v, err := m.sess.Submit(ordinal, choice)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.last = &v.Record
	m.cursor = 0
	if v.Done {
		rep, err := m.sess.Report()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.report = &rep
		m.table.SetRows(ReportRows(rep))
	}
	return m, nil
}

func (m Model) View() string {
	if m.report != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.title.Render(fmt.Sprintf("Quiz finished: %d/%d", m.report.Score, m.report.Total)),
			m.verdictLine(),
			m.table.View(),
			m.styles.help.Render("press any key to exit"),
		)
	}
	q, ordinal, ok := m.sess.Current()
	if !ok {
		return ""
	}
	var opts strings.Builder
	for i, o := range q.Options {
		line := fmt.Sprintf("%c) %s", 'A'+rune(i%26), o)
		if i == m.cursor {
			opts.WriteString(m.styles.selected.Render("> " + line))
		} else {
			opts.WriteString("  " + line)
		}
		opts.WriteString("\n")
	}
	header := fmt.Sprintf("Question %d/%d", ordinal, m.sess.Total())
	if q.Provenance == extract.ProvenanceFallback {
		header += m.styles.warn.Render("  (unverified answer)")
	}
	parts := []string{m.styles.title.Render(header), q.Text, "", opts.String(), m.verdictLine()}
	if m.err != nil {
		parts = append(parts, m.styles.bad.Render(m.err.Error()))
	}
	parts = append(parts, m.styles.help.Render("↑/↓ move • enter or letter answers • q quits"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) verdictLine() string {
	if m.last == nil {
		return ""
	}
	switch {
	case m.last.Correct == nil:
		return m.styles.warn.Render("previous: not scored, no answer known")
	case m.last.IsCorrect:
		return m.styles.good.Render("previous: correct")
	default:
		return m.styles.bad.Render("previous: wrong, answer was " + *m.last.Correct)
	}
}
