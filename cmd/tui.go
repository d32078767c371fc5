package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ==========================================
// =============== Messages =================
// ==========================================
// probedMsg carries the result of probing one file.
type probedMsg streamInfo

// probeFileCmd probes path off the UI loop.
func probeFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return probedMsg(probePath(path))
	}
}

// ==========================================
// ================ Models ==================
// ==========================================

// scanModel holds the state of a scan in progress.
type scanModel struct {
	// files is every file to probe, in order.
	files []string
	// results holds one entry per probed file.
	results []streamInfo
	// progress is the progress bubble model.
	progress progress.Model
	// help renders the key bindings.
	help help.Model
	// stopped is set when the user quits before the end.
	stopped bool
}

func newScanModel(files []string) scanModel {
	prog := progress.New(progress.WithGradient(dspBlue, dspSky))
	prog.ShowPercentage = false
	prog.Width = maxWidth

	return scanModel{
		files:    files,
		progress: prog,
		help:     help.New(),
	}
}

// ==========================================
// ================= Main ===================
// ==========================================
// runScanTUI probes files while drawing a progress bar to w. It returns the
// results gathered so far if the user stops early.
func runScanTUI(w io.Writer, files []string) ([]streamInfo, error) {
	p := tea.NewProgram(newScanModel(files), tea.WithOutput(w))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running scan: %w", err)
	}
	m := final.(scanModel)
	if m.stopped {
		logger.Warn("scan stopped", "probed", len(m.results), "of", len(m.files))
	}
	return m.results, nil
}

func (m scanModel) Init() tea.Cmd {
	return probeFileCmd(m.files[0])
}

func (m scanModel) done() bool {
	return len(m.results) >= len(m.files)
}

func (m scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Handle terminal resizing
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, helpKeys.quit):
			m.stopped = true
			return m, tea.Quit
		case key.Matches(msg, helpKeys.toggleHelp):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case probedMsg:
		m.results = append(m.results, streamInfo(msg))
		if m.done() {
			return m, tea.Quit
		}
		cmd := m.progress.SetPercent(float64(len(m.results)) / float64(len(m.files)))
		return m, tea.Batch(cmd, probeFileCmd(m.files[len(m.results)]))

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// ==========================================
// ================= View ===================
// ==========================================
// View renders the current state of the scan.
func (m scanModel) View() string {
	if m.done() || m.stopped {
		return ""
	}
	pad := strings.Repeat(" ", 2)
	current := filepath.Base(m.files[len(m.results)])
	return fmt.Sprintf("\nScanning: %s (%d/%d)\n\n%s%s\n\n%s%s\n",
		current, len(m.results)+1, len(m.files),
		pad, m.progress.View(),
		pad, m.help.View(helpKeys))
}
