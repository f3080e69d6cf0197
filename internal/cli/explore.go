package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/hostbridge/decl"
	"github.com/wippyai/hostbridge/runtime"
	"github.com/wippyai/hostbridge/value"
)

// NewExploreCommand creates the explore command.
func NewExploreCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse and call exported functions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rt, err := root.newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			p := tea.NewProgram(newExploreModel(rt), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

type exploreModel struct {
	err      error
	rt       *runtime.Runtime
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type funcInfo struct {
	name      string
	signature string
	params    []value.Param
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type callResultMsg struct {
	err    error
	result string
}

func newExploreModel(rt *runtime.Runtime) *exploreModel {
	m := &exploreModel{rt: rt, state: stateSelectFunc}
	for _, fn := range rt.Registry().Signatures() {
		sig, err := decl.Signature(fn)
		if err != nil {
			sig = err.Error()
		}
		m.funcs = append(m.funcs, funcInfo{name: fn.HostName, signature: sig, params: fn.Params})
	}
	return m
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.reset()
				return m, nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelectFunc {
				m.reset()
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *exploreModel) reset() {
	m.state = stateSelectFunc
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *exploreModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.params))
	for i, p := range f.params {
		ti := textinput.New()
		ti.Placeholder = p.Type.String()
		ti.Prompt = p.Key + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *exploreModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseArg(input.Value(), &f.params[i].Type)
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", f.params[i].Key, err)}
		}
		args[i] = v
	}

	result, err := m.rt.CallValues(context.Background(), f.name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	out, err := formatResult(result)
	return callResultMsg{result: out, err: err}
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostbridge"))
	b.WriteString(fmt.Sprintf(" %d functions\n\n", len(m.funcs)))

	if len(m.funcs) == 0 {
		b.WriteString("No functions registered.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.name + " " + f.signature))
			} else {
				b.WriteString("  " + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(f.params[i].Type.String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *exploreModel) formatFunc(f funcInfo) string {
	return funcStyle.Render(f.name) + " " + typeStyle.Render(f.signature)
}
