// Command hapticctl is a terminal status/debug console for the haptic
// synthesis core, driving a Controller and Animator in-process (no
// network hop) the way a debug build of the core would be exercised
// directly. Modelled on the teacher pack's bubbletea+lipgloss mixer UI.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/audiohost"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/hapticctrl"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/yuragi"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	activeDot  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Render("●")
	idleDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Render("●")
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// model is the bubbletea model; it holds no logic of its own beyond what
// is needed to poll and render the Controller's state.
type model struct {
	controller *hapticctrl.Controller
	animator   *yuragi.Animator
	selected   int
	presetIdx  int
	width      int
	height     int
}

func newModel(controller *hapticctrl.Controller, animator *yuragi.Animator) model {
	return model{controller: controller, animator: animator}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.animator.StopAll()
		m.controller.StopStreaming()
		return m, tea.Quit

	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "l":
		if m.selected < 3 {
			m.selected++
		}

	case "up", "k":
		m.presetIdx = (m.presetIdx - 1 + len(yuragi.Names())) % len(yuragi.Names())
	case "down", "j":
		m.presetIdx = (m.presetIdx + 1) % len(yuragi.Names())

	case "enter":
		preset := yuragi.Lookup(yuragi.Names()[m.presetIdx])
		actuator := m.selected/2 + 1
		m.animator.Start(actuator, preset, 30*time.Second)

	case "x":
		actuator := m.selected/2 + 1
		m.animator.Stop(actuator)

	case "s":
		if m.controller.IsStreaming() {
			m.controller.StopStreaming()
		}
	}
	return m, nil
}

func (m model) View() string {
	snap := m.controller.GetCurrentParameters()
	status := m.controller.GetStatus()

	title := titleStyle.Render("haptic synthesis console")
	lines := []string{title, ""}

	streamDot := idleDot
	if status.IsStreaming {
		streamDot = activeDot
	}
	lines = append(lines, fmt.Sprintf("%s streaming  %s latency %.2fms  %s %d/%s",
		streamDot, labelStyle.Render(""), status.LatencyMS, labelStyle.Render("device"), status.Device.Channels, status.Device.Mode))
	lines = append(lines, "")

	for i, p := range snap {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		dot := idleDot
		if p.Active {
			dot = activeDot
		}
		lines = append(lines, fmt.Sprintf("%s%s ch%d  %s %s  %s %s  %s %s",
			cursor, dot, i,
			labelStyle.Render("freq"), valueStyle.Render(fmt.Sprintf("%.1fHz", p.FrequencyHz)),
			labelStyle.Render("amp"), valueStyle.Render(fmt.Sprintf("%.2f", p.Amplitude)),
			labelStyle.Render("phase"), valueStyle.Render(fmt.Sprintf("%.0f°", p.PhaseDeg)),
		))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("preset: %s", valueStyle.Render(yuragi.Names()[m.presetIdx])))
	lines = append(lines, helpStyle.Render("←→ select actuator  ↑↓ preset  enter start  x stop  s stop stream  q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func main() {
	controller, err := hapticctrl.New(hapticctrl.DefaultSampleRate, hapticctrl.DefaultBlockSize, audiohost.BestEffortEnumerator{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	backend := audiohost.NewHeadlessBackend(hapticctrl.DefaultSampleRate, hapticctrl.DefaultBlockSize, 4)
	_ = controller.StartStreaming(backend)

	animator := yuragi.New(controller.SetVectorForce)

	m := newModel(controller, animator)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
