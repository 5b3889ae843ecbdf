package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/macslang/macs"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.BorderForeground(accentColor)

	selectedStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	helpDescStyle = mutedStyle
)

type menuKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Tab   key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var menuKeys = menuKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run phase"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// runPhase is offered by the menu after the pipeline phases. It leaves the
// menu so the program owns the terminal.
const runPhase = "run"

type menuSource struct {
	name string
	desc string
	src  string
}

type pane int

const (
	sourcePane pane = iota
	phasePane
)

type menuModel struct {
	sources   []menuSource
	phases    []string
	sourceIdx int
	phaseIdx  int
	focus     pane

	output   string
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	// runSource is set when the user chose to run a program.
	runSource *menuSource
	quitting  bool
}

func newMenuModel(extra []menuSource) menuModel {
	var sources []menuSource
	for _, name := range macs.SampleNames() {
		s := macs.Samples[name]
		sources = append(sources, menuSource{name: s.Name, desc: s.Description, src: s.Source})
	}
	sources = append(sources, extra...)

	var names []string
	for _, p := range phases {
		names = append(names, p.name)
	}
	names = append(names, runPhase)

	return menuModel{
		sources:  sources,
		phases:   names,
		viewport: viewport.New(80, 10),
		output:   mutedStyle.Render("Pick a program and a phase, then press enter."),
	}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-len(m.sources)-len(m.phases)-10, 5)
		m.viewport.SetContent(m.output)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, menuKeys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, menuKeys.Tab):
			if m.focus == sourcePane {
				m.focus = phasePane
			} else {
				m.focus = sourcePane
			}
			return m, nil

		case key.Matches(msg, menuKeys.Up):
			m.move(-1)
			return m, nil

		case key.Matches(msg, menuKeys.Down):
			m.move(1)
			return m, nil

		case key.Matches(msg, menuKeys.Enter):
			return m.runSelected()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *menuModel) move(delta int) {
	if m.focus == sourcePane {
		m.sourceIdx = clamp(m.sourceIdx+delta, len(m.sources))
	} else {
		m.phaseIdx = clamp(m.phaseIdx+delta, len(m.phases))
	}
}

func clamp(i, n int) int {
	return min(max(i, 0), n-1)
}

func (m menuModel) runSelected() (tea.Model, tea.Cmd) {
	source := m.sources[m.sourceIdx]
	name := m.phases[m.phaseIdx]

	if name == runPhase {
		m.runSource = &source
		m.quitting = true
		return m, tea.Quit
	}

	for _, p := range phases {
		if p.name != name {
			continue
		}
		out, err := p.run(source.src)
		if err != nil {
			out += renderError(source.src, err)
		} else {
			out = successStyle.Render(fmt.Sprintf("%s of %s succeeded", p.name, source.name)) + "\n\n" + out
		}
		m.output = out
		m.viewport.SetContent(out)
		m.viewport.GotoTop()
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("MACSLang compiler") + "\n\n")

	var sources []string
	for i, s := range m.sources {
		sources = append(sources, menuItem(s.name+mutedStyle.Render("  "+s.desc), i == m.sourceIdx))
	}
	var phaseItems []string
	for i, p := range m.phases {
		phaseItems = append(phaseItems, menuItem(p, i == m.phaseIdx))
	}

	left, right := paneStyle, paneStyle
	if m.focus == sourcePane {
		left = focusedPaneStyle
	} else {
		right = focusedPaneStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(strings.Join(sources, "\n")),
		" ",
		right.Render(strings.Join(phaseItems, "\n")),
	))
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.output)
	}
	b.WriteString("\n\n")

	var help []string
	for _, k := range []key.Binding{menuKeys.Up, menuKeys.Down, menuKeys.Tab, menuKeys.Enter, menuKeys.Quit} {
		h := k.Help()
		help = append(help, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	b.WriteString(strings.Join(help, "  "))
	return b.String()
}

func menuItem(text string, selected bool) string {
	if selected {
		return selectedStyle.Render("› ") + text
	}
	return "  " + text
}

func newMenuCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu [file...]",
		Short: "Pick programs and phases interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []menuSource
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read source: %w", err)
				}
				extra = append(extra, menuSource{name: filepath.Base(path), desc: path, src: string(data)})
			}

			p := tea.NewProgram(newMenuModel(extra), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(menuModel); ok && m.runSource != nil {
				opts.logger.Debug("running from menu", "source", m.runSource.name)
				return opts.run(cmd, m.runSource.name, m.runSource.src)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.dotnet, "dotnet", "dotnet", "dotnet executable")
	cmd.Flags().StringVar(&opts.framework, "framework", "net6.0", "target framework of the generated project")
	cmd.Flags().StringVar(&opts.project, "project", "MACSLangGeneratedApp", "name of the generated project")
	return cmd
}
