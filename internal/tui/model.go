// Package tui is the terminal front end of the wizard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/genia-lsp/genia/internal/artifact"
	"github.com/genia-lsp/genia/internal/errmsg"
	"github.com/genia-lsp/genia/internal/wizard"
)

type mode int

const (
	modeKey mode = iota
	modeInput
	modeAnalyzing
	modeAnalysis
	modeFinished
)

// analyzeMsg carries the result of an asynchronous Analyze call.
type analyzeMsg struct {
	snap wizard.Snapshot
	err  error
}

// Model is the bubbletea model for the wizard.
type Model struct {
	ctx     context.Context
	session *wizard.Session
	outDir  string
	errCtx  *errmsg.ErrorContext

	mode     mode
	prevMode mode

	keyInput textinput.Model
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	snap   wizard.Snapshot
	status string
	err    error

	width  int
	height int
	style  styles

	write func(dir, code string) (string, error)
	copy  func(code string) error
}

type styles struct {
	header   lipgloss.Style
	subtitle lipgloss.Style
	step     lipgloss.Style
	stepOn   lipgloss.Style
	textarea lipgloss.Style
	panel    lipgloss.Style
	badge    lipgloss.Style
	help     lipgloss.Style
	footer   lipgloss.Style
	accent   lipgloss.Style
	error    lipgloss.Style
	success  lipgloss.Style
	thinking lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22D3EE")).
			Bold(true).
			Padding(0, 1),

		subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1),

		step: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Padding(0, 1),

		stepOn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0E7490")).
			Padding(0, 1),

		textarea: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#AD8CFF")),

		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")),

		badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E2E8F0")).
			Background(lipgloss.Color("#164E63")).
			Padding(0, 1),

		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")),

		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Faint(true),

		accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AD8CFF")),

		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5C5C")).
			Bold(true),

		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3DDC97")).
			Bold(true),

		thinking: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22D3EE")).
			Italic(true),
	}
}

// New builds the wizard model. Finished scripts are written to outDir.
// errCtx, when non-nil, tailors error suggestions to the configured
// provider.
func New(ctx context.Context, session *wizard.Session, outDir string, errCtx *errmsg.ErrorContext) *Model {
	ki := textinput.New()
	ki.Placeholder = "Chave de API"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.CharLimit = 256

	ta := textarea.New()
	ta.Placeholder = "Descreva o comando AutoLISP que você precisa (mínimo 10 caracteres)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(6)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		session:  session,
		outDir:   outDir,
		errCtx:   errCtx,
		keyInput: ki,
		textarea: ta,
		viewport: viewport.New(80, 15),
		spinner:  sp,
		style:    newStyles(),
		write:    artifact.Write,
		copy:     artifact.Copy,
	}
	m.snap = session.Snapshot()
	if m.snap.HasKey {
		m.enter(modeInput)
	} else {
		m.prevMode = modeInput
		m.enter(modeKey)
	}
	return m
}

// Run starts the wizard on the terminal and blocks until the user quits
// or ctx is canceled.
func Run(ctx context.Context, session *wizard.Session, outDir string, errCtx *errmsg.ErrorContext) error {
	p := tea.NewProgram(New(ctx, session, outDir, errCtx), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.mode == modeKey {
		return textinput.Blink
	}
	return textarea.Blink
}

// enter switches mode and moves focus to the mode's input.
func (m *Model) enter(md mode) {
	m.mode = md
	m.keyInput.Blur()
	m.textarea.Blur()

	switch md {
	case modeKey:
		m.keyInput.Reset()
		m.keyInput.Focus()
	case modeInput:
		m.textarea.Focus()
	case modeAnalysis:
		m.viewport.SetContent(m.snap.Analysis)
		m.viewport.GotoTop()
	case modeFinished:
		m.viewport.SetContent(m.snap.Code)
		m.viewport.GotoTop()
	}
}
