package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/genia-lsp/genia/internal/errmsg"
	"github.com/genia-lsp/genia/internal/wizard"
)

// View implements tea.Model.
func (m *Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		m.viewBody(),
		m.viewStatus(),
		m.style.footer.Render(m.helpText()),
	)
}

func (m *Model) viewHeader() string {
	title := m.style.header.Render("GenIA.lsp") +
		m.style.subtitle.Render("gerador de rotinas AutoLISP")

	labels := []struct {
		step  wizard.Step
		label string
	}{
		{wizard.StepInput, "1. Pedido"},
		{wizard.StepAnalysis, "2. Análise"},
		{wizard.StepFinished, "3. Código"},
	}
	current := m.currentStep()
	steps := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.step == current {
			steps = append(steps, m.style.stepOn.Render(l.label))
		} else {
			steps = append(steps, m.style.step.Render(l.label))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, steps...))
}

func (m *Model) currentStep() wizard.Step {
	switch m.mode {
	case modeAnalysis:
		return wizard.StepAnalysis
	case modeFinished:
		return wizard.StepFinished
	case modeKey:
		if m.prevMode == modeAnalysis {
			return wizard.StepAnalysis
		}
		if m.prevMode == modeFinished {
			return wizard.StepFinished
		}
	}
	return wizard.StepInput
}

func (m *Model) viewBody() string {
	switch m.mode {
	case modeKey:
		return "\nInforme sua chave de API para começar.\n\n" + m.keyInput.View() + "\n"
	case modeInput:
		return m.style.textarea.Render(m.textarea.View())
	case modeAnalyzing:
		return "\n" + m.spinner.View() + m.style.thinking.Render(" Analisando o pedido...") + "\n"
	case modeAnalysis:
		return m.style.panel.Render(m.viewport.View())
	case modeFinished:
		badge := m.style.accent.Render("Comando: ") + m.style.badge.Render(m.snap.Command)
		return lipgloss.JoinVertical(lipgloss.Left, badge, m.style.panel.Render(m.viewport.View()))
	}
	return ""
}

func (m *Model) viewStatus() string {
	if m.err != nil {
		return m.style.error.Render(strings.TrimRight(errmsg.Format(m.err, m.errCtx), "\n"))
	}
	if m.status != "" {
		return m.style.success.Render(m.status)
	}
	return ""
}

func (m *Model) helpText() string {
	switch m.mode {
	case modeKey:
		if m.session.HasKey() {
			return "enter: salvar • esc: voltar • ctrl+c: sair"
		}
		return "enter: salvar • ctrl+c: sair"
	case modeInput:
		return "enter: analisar • alt+enter: nova linha • ctrl+k: chave • ctrl+c: sair"
	case modeAnalyzing:
		return "ctrl+c: sair"
	case modeAnalysis:
		return "enter: gerar código • esc: ajustar pedido • r: recomeçar • ctrl+k: chave • ctrl+c: sair"
	case modeFinished:
		return "d: baixar .lsp • c: copiar • r: novo pedido • ctrl+k: chave • ctrl+c: sair"
	}
	return ""
}
