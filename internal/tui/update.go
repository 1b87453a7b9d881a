package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/genia-lsp/genia/internal/wizard"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case analyzeMsg:
		return m.handleAnalyzed(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+k":
			if m.mode != modeAnalyzing && m.mode != modeKey {
				m.prevMode = m.mode
				m.status, m.err = "", nil
				m.enter(modeKey)
				return m, nil
			}
		}

		switch m.mode {
		case modeKey:
			return m.updateKey(msg)
		case modeInput:
			return m.updateInput(msg)
		case modeAnalyzing:
			return m, nil
		case modeAnalysis:
			return m.updateAnalysis(msg)
		case modeFinished:
			return m.updateFinished(msg)
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeKey:
		m.keyInput, cmd = m.keyInput.Update(msg)
	case modeInput:
		m.textarea, cmd = m.textarea.Update(msg)
	case modeAnalyzing:
		m.spinner, cmd = m.spinner.Update(msg)
	case modeAnalysis, modeFinished:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	m.keyInput.Width = max(width-8, 10)
	m.textarea.SetWidth(max(width-4, 10))
	m.viewport.Width = max(width-4, 10)
	// header, steps, status line, footer and panel borders
	m.viewport.Height = max(height-9, 3)
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.session.SaveKey(m.keyInput.Value()); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = "Chave salva."
		m.snap = m.session.Snapshot()
		m.enter(m.prevMode)
		return m, nil
	case "esc":
		if m.session.HasKey() {
			m.err = nil
			m.enter(m.prevMode)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		prompt := strings.TrimSpace(m.textarea.Value())
		if prompt == "" {
			return m, nil
		}
		m.status, m.err = "", nil
		m.enter(modeAnalyzing)
		return m, tea.Batch(m.analyzeCmd(prompt), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// analyzeCmd runs the request off the UI goroutine.
func (m *Model) analyzeCmd(prompt string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Analyze(m.ctx, prompt)
		return analyzeMsg{snap: snap, err: err}
	}
}

func (m *Model) handleAnalyzed(msg analyzeMsg) (tea.Model, tea.Cmd) {
	m.snap = msg.snap
	if msg.err != nil {
		m.err = msg.err
		m.enter(modeInput)
		return m, nil
	}
	m.err = nil
	m.enter(modeAnalysis)
	return m, nil
}

func (m *Model) updateAnalysis(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		snap, err := m.session.Confirm()
		m.snap = snap
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.enter(modeFinished)
		return m, nil
	case "esc", "b":
		snap, err := m.session.Back()
		m.snap = snap
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.textarea.SetValue(snap.Prompt)
		m.enter(modeInput)
		return m, nil
	case "r":
		return m.reset()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "d":
		path, err := m.write(m.outDir, m.session.Code())
		if err != nil {
			m.status, m.err = "", err
			return m, nil
		}
		m.status, m.err = "Salvo em "+path, nil
		return m, nil
	case "c":
		if err := m.copy(m.session.Code()); err != nil {
			m.status, m.err = "", err
			return m, nil
		}
		m.status, m.err = "Código copiado para a área de transferência.", nil
		return m, nil
	case "r":
		return m.reset()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) reset() (tea.Model, tea.Cmd) {
	snap, err := m.session.Reset()
	m.snap = snap
	if err != nil {
		if !errors.Is(err, wizard.ErrBusy) {
			m.err = err
		}
		return m, nil
	}
	m.status, m.err = "", nil
	m.textarea.Reset()
	m.enter(modeInput)
	return m, nil
}
