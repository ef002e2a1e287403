package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"copydir/internal/domain"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseExecuting
	PhaseDone
	PhaseError
)

// Messages for the TUI
type (
	ScanProgressMsg struct {
		Current int
		Total   int
	}
	PlanReadyMsg struct {
		Plan domain.MirrorPlan
	}
	FileProgressMsg struct {
		Current int
		Total   int
		Item    domain.MirrorItem
	}
	DoneMsg struct {
		Result domain.MirrorResult
	}
	ErrorMsg struct {
		Err error
	}
	tickMsg time.Time
)

// ExecuteFunc starts the mirror run for a plan. The returned command should
// report progress with FileProgressMsg and finish with DoneMsg or ErrorMsg.
type ExecuteFunc func(plan domain.MirrorPlan) tea.Cmd

type Config struct {
	SourceDir string
	TargetDir string
	Mode      domain.Mode
	DryRun    bool
	Verbose   bool
	Execute   ExecuteFunc
}

type Model struct {
	config      Config
	Phase       Phase
	Plan        domain.MirrorPlan
	Result      domain.MirrorResult
	spinner     spinner.Model
	progress    progress.Model
	scanCurrent int
	scanTotal   int
	fileCurrent int
	fileTotal   int
	currentItem domain.MirrorItem
	Err         error
	Quitting    bool
	width       int
}

func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhaseScanning,
		spinner:  s,
		progress: p,
		width:    80,
	}
}

// Aborted reports whether the user quit before the run reached a final phase.
func (m Model) Aborted() bool {
	return m.Quitting && m.Phase != PhaseDone && m.Phase != PhaseError
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if m.Phase == PhaseDone || m.Phase == PhaseError {
				return m, tea.Quit
			}
		}

	case ScanProgressMsg:
		m.scanCurrent = msg.Current
		m.scanTotal = msg.Total
		return m, nil

	case PlanReadyMsg:
		m.Plan = msg.Plan
		if m.config.DryRun || len(m.Plan.Items) == 0 {
			m.Phase = PhaseDone
			return m, nil
		}
		m.Phase = PhaseExecuting
		m.fileTotal = len(m.Plan.Items)
		if m.config.Execute != nil {
			return m, tea.Batch(tickCmd(), m.config.Execute(m.Plan))
		}
		return m, nil

	case FileProgressMsg:
		m.fileCurrent = msg.Current
		m.fileTotal = msg.Total
		m.currentItem = msg.Item
		return m, nil

	case DoneMsg:
		m.Phase = PhaseDone
		m.Result = msg.Result
		return m, nil

	case ErrorMsg:
		m.Phase = PhaseError
		m.Err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.Phase == PhaseScanning || m.Phase == PhaseExecuting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tickMsg:
		if m.Phase == PhaseExecuting {
			var cmds []tea.Cmd
			if m.fileTotal > 0 {
				cmds = append(cmds, m.progress.SetPercent(float64(m.fileCurrent)/float64(m.fileTotal)))
			}
			cmds = append(cmds, tickCmd())
			return m, tea.Batch(cmds...)
		}
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhaseScanning:
		b.WriteString(m.renderScanning())
	case PhaseExecuting:
		b.WriteString(m.renderExecution())
	case PhaseDone:
		b.WriteString(m.renderSummary())
	case PhaseError:
		b.WriteString(m.renderError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("copydir")
	subtitle := subtitleStyle.Render(modeTitle(m.config.Mode))
	dimStyle := lipgloss.NewStyle().Foreground(dimTextColor)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		dimStyle.Render(fmt.Sprintf("%s Source: %s", iconFolder, shortenPath(m.config.SourceDir))),
		dimStyle.Render(fmt.Sprintf("%s Target: %s", iconFolder, shortenPath(m.config.TargetDir))),
	)
}

func modeTitle(mode domain.Mode) string {
	if mode == domain.ModeInfo {
		return "Writing file properties"
	}
	return "Copying files"
}

func (m Model) renderScanning() string {
	if m.scanTotal == 0 {
		return fmt.Sprintf("%s Scanning source...", m.spinner.View())
	}
	percent := float64(m.scanCurrent) / float64(m.scanTotal)
	return fmt.Sprintf("%s Scanning source...\n\n  %s\n  %s",
		m.spinner.View(),
		m.progress.ViewAs(percent),
		statValueStyle.Render(fmt.Sprintf("%d/%d", m.scanCurrent, m.scanTotal)),
	)
}

func (m Model) renderExecution() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render(modeTitle(m.config.Mode)))
	b.WriteString("\n\n")

	percent := 0.0
	if m.fileTotal > 0 {
		percent = float64(m.fileCurrent) / float64(m.fileTotal)
	}

	b.WriteString(fmt.Sprintf("  %s Working...\n\n", m.spinner.View()))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(percent)))

	percentStyle := lipgloss.NewStyle().Foreground(dimTextColor)
	b.WriteString(fmt.Sprintf("  %s %s\n",
		statValueStyle.Render(fmt.Sprintf("%d/%d files", m.fileCurrent, m.fileTotal)),
		percentStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
	))

	if m.currentItem.SourcePath != "" {
		b.WriteString(fmt.Sprintf("\n  From: %s\n", fileNameStyle.Render(m.currentItem.SourcePath)))
		b.WriteString(fmt.Sprintf("  %s   %s\n", iconArrow, pathStyle.Render(m.currentItem.TargetPath)))
	}

	return b.String()
}

func (m Model) renderSummary() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Summary"))
	b.WriteString("\n\n")

	if m.config.DryRun {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Planned files:"), statValueStyle.Render(fmt.Sprintf("%d (%s)", len(m.Plan.Items), humanize.Bytes(uint64(m.Plan.TotalBytes))))))
		b.WriteString(highlightBoxStyle.Render("Dry Run - nothing was written"))
		b.WriteString("\n")
		return b.String()
	}

	icon := successStyle.Render(iconSuccess)
	b.WriteString(fmt.Sprintf("  %s %s\n\n", icon, successStyle.Render("Done")))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Files written:"), statValueStyle.Render(fmt.Sprintf("%d", m.Result.Processed))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Bytes written:"), statValueStyle.Render(humanize.Bytes(uint64(m.Result.BytesWritten)))))

	dimStyle := lipgloss.NewStyle().Foreground(dimTextColor)
	if skipped := m.Plan.Skipped + len(m.Result.Failures); skipped > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Skipped:"), dimStyle.Render(fmt.Sprintf("%s %d", iconSkipped, skipped))))
	}
	if m.Plan.Overwrites > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Overwritten:"), warningStyle.Render(fmt.Sprintf("%s %d", iconOverride, m.Plan.Overwrites))))
	}

	if m.config.Verbose && len(m.Result.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Warnings:"))
		b.WriteString("\n")
		for _, w := range m.Result.Warnings {
			b.WriteString(fmt.Sprintf("  %s %s\n", iconOverride, w))
		}
	}

	return b.String()
}

func (m Model) renderError() string {
	icon := errorStyle.Render(iconError)
	msg := errorStyle.Render(fmt.Sprintf("Error: %s", m.Err.Error()))

	return highlightBoxStyle.
		BorderForeground(errorColor).
		Render(fmt.Sprintf("%s %s", icon, msg))
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhaseScanning:
		help = "Press q to quit"
	case PhaseExecuting:
		help = "Working... press q to abort"
	case PhaseDone:
		help = "Press Enter to exit"
	case PhaseError:
		help = "Press Enter or q to exit"
	}
	return helpStyle.Render(help)
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
