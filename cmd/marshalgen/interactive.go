package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/wippyai/marshalgen/cgen"
	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/opcode"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxListed bounds the visible part of the procedure list.
const maxListed = 12

type browserModel struct {
	filter     textinput.Model
	procs      []*ir.Proc
	shown      []*ir.Proc
	opcodes    map[string]uint32
	commands   map[string]string
	streamType string
	selected   int
}

func newBrowserModel(mod *generator.Module, streamType string) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter procedures"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &browserModel{
		filter:     ti,
		procs:      mod.Procs(),
		streamType: streamType,
		opcodes: lo.SliceToMap(mod.Opcodes().Entries(), func(e opcode.Entry) (string, uint32) {
			return e.Name, e.Value
		}),
	}
	m.commands = make(map[string]string)
	for _, d := range mod.Definitions() {
		if d.Command == "" {
			continue
		}
		for _, p := range []*ir.Proc{d.Writer, d.Reader} {
			m.commands[p.Name] = d.Command
		}
	}
	m.applyFilter()
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.shown = lo.Filter(m.procs, func(p *ir.Proc, _ int) bool {
		return q == "" || strings.Contains(strings.ToLower(p.Name), q)
	})
	if m.selected >= len(m.shown) {
		m.selected = max(len(m.shown)-1, 0)
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < len(m.shown)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browserModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("marshalgen"))
	b.WriteString(fmt.Sprintf(" %d procedures, %d opcodes\n\n", len(m.procs), len(m.opcodes)))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	start := 0
	if m.selected >= maxListed {
		start = m.selected - maxListed + 1
	}
	end := min(start+maxListed, len(m.shown))
	for i := start; i < end; i++ {
		p := m.shown[i]
		label := fmt.Sprintf("%s (%s)", p.Name, p.Direction)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	if len(m.shown) == 0 {
		b.WriteString(helpStyle.Render("  no match"))
		b.WriteString("\n")
	}

	if len(m.shown) > 0 {
		src, err := cgen.RenderProc(m.shown[m.selected], m.streamType)
		if err != nil {
			src = err.Error()
		}
		b.WriteString("\n")
		if cmd, ok := m.commands[m.shown[m.selected].Name]; ok {
			b.WriteString(helpStyle.Render(fmt.Sprintf("reply of %s, opcode %d", cmd, m.opcodes[cmd])))
			b.WriteString("\n")
		}
		b.WriteString(codeStyle.Render(src))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • esc quit"))
	return b.String()
}

func runInteractive(mod *generator.Module, streamType string) error {
	p := tea.NewProgram(newBrowserModel(mod, streamType), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
