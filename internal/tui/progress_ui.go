package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	guwerrors "guw.dev/guw/internal/errors"
)

const (
	// KeyCtrlC is the key string for Ctrl+C
	KeyCtrlC = "ctrl+c"
	// KeyQuit is the key string for q
	KeyQuit = "q"
)

// ErrInterrupted is returned when the user quit the progress view before the run finished
var ErrInterrupted = errors.New("interrupted")

const (
	stepPending = "pending"
	stepRunning = "running"
	stepDone    = "done"
	stepError   = "error"
)

type progressStep struct {
	Description string
	Status      string
	Commit      string
	Error       error
}

// ProgressModel is the bubbletea model showing a plan run
type ProgressModel struct {
	title    string
	steps    []progressStep
	pushes   []string
	spinner  spinner.Model
	done     bool
	quitting bool
	styles   progressStyles
	updates  <-chan ProgressUpdate
}

type progressStyles struct {
	spinnerStyle lipgloss.Style
	doneStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	dimStyle     lipgloss.Style
}

// progressMsg wraps an update read from the channel
type progressMsg ProgressUpdate

// progressClosedMsg is sent once the reporter is closed
type progressClosedMsg struct{}

// NewProgressModel creates a model with one line per step description
func NewProgressModel(title string, descriptions []string) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	steps := make([]progressStep, len(descriptions))
	for i, desc := range descriptions {
		steps[i] = progressStep{Description: desc, Status: stepPending}
	}

	return ProgressModel{
		title:   title,
		steps:   steps,
		spinner: s,
		styles: progressStyles{
			spinnerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
			doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			dimStyle:     dimStyle,
		},
	}
}

// Init starts the spinner and waits for the first update
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// waitForUpdate blocks on the update channel; Close on the reporter releases it
func (m ProgressModel) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	updates := m.updates
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return progressClosedMsg{}
		}
		return progressMsg(update)
	}
}

// Update handles message updates for the bubbletea model
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == KeyCtrlC || msg.String() == KeyQuit {
			m.quitting = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressMsg:
		m = m.apply(ProgressUpdate(msg))
		return m, m.waitForUpdate()
	case progressClosedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) apply(update ProgressUpdate) ProgressModel {
	if update.Kind == UpdatePushing {
		m.pushes = append(m.pushes, update.Remote+"/"+update.Branch)
		return m
	}
	if update.StepIndex < 0 || update.StepIndex >= len(m.steps) {
		return m
	}
	steps := append([]progressStep(nil), m.steps...)
	step := &steps[update.StepIndex]
	switch update.Kind {
	case UpdateStarted:
		step.Status = stepRunning
	case UpdateFinished:
		step.Status = stepDone
		step.Commit = update.Commit
	case UpdateFailed:
		step.Status = stepError
		step.Error = update.Error
	}
	m.steps = steps
	return m
}

// View renders the TUI
func (m ProgressModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.title + ":\n\n")

	for i, step := range m.steps {
		var icon, suffix string
		switch step.Status {
		case stepPending:
			icon = m.styles.dimStyle.Render("○")
		case stepRunning:
			icon = m.spinner.View()
			suffix = m.styles.spinnerStyle.Render("running...")
		case stepDone:
			icon = m.styles.doneStyle.Render("✓")
			suffix = m.styles.dimStyle.Render(guwerrors.ShortSHA(step.Commit))
		case stepError:
			icon = m.styles.errorStyle.Render("✗")
			suffix = m.styles.errorStyle.Render("failed")
			if step.Error != nil {
				suffix += " " + m.styles.errorStyle.Render("→ "+firstLine(step.Error.Error()))
			}
		}
		fmt.Fprintf(&b, "  %s %d. %s %s\n", icon, i+1, step.Description, suffix)
	}

	for _, ref := range m.pushes {
		fmt.Fprintf(&b, "  %s pushed %s\n", m.styles.doneStyle.Render("↑"), ref)
	}

	if m.done {
		b.WriteString("\n")
		if failed := m.failed(); failed >= 0 {
			b.WriteString(m.styles.errorStyle.Render(fmt.Sprintf("Step %d failed, local branches restored", failed+1)))
		} else {
			b.WriteString(m.styles.doneStyle.Render(fmt.Sprintf("✓ All %d steps completed", len(m.steps))))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m ProgressModel) failed() int {
	for i, step := range m.steps {
		if step.Status == stepError {
			return i
		}
	}
	return -1
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// RunProgressTUI shows the run until the reporter's channel is closed. It
// returns ErrInterrupted when the user quits first.
func RunProgressTUI(title string, descriptions []string, updates <-chan ProgressUpdate) error {
	return runProgress(title, descriptions, updates, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
}

func runProgress(title string, descriptions []string, updates <-chan ProgressUpdate, opts ...tea.ProgramOption) error {
	m := NewProgressModel(title, descriptions)
	m.updates = updates

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(ProgressModel); ok && fm.quitting && !fm.done {
		return ErrInterrupted
	}
	return nil
}
