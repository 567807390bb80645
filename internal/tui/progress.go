package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// doneMsg ends the spinner program with the operation's outcome.
type doneMsg struct {
	err error
}

// progressModel renders a spinner next to a message until the wrapped
// operation finishes.
type progressModel struct {
	spinner spinner.Model
	message string
	err     error
}

func newProgressModel(message string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{spinner: s, message: message}
}

// Init implements tea.Model.
func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m progressModel) View() string {
	return m.spinner.View() + " " + m.message + "\n"
}

// RunWithSpinner executes fn while showing an animated spinner with the
// given message. In non-interactive mode the message is printed once and fn
// runs directly. The operation's error is returned either way.
func RunWithSpinner(message string, fn func() error) error {
	if !IsInteractive() {
		fmt.Println(message)
		return fn()
	}

	p := tea.NewProgram(newProgressModel(message))

	errCh := make(chan error, 1)
	go func() {
		err := fn()
		errCh <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		// Fall back to the operation's own result if the TUI breaks.
		return <-errCh
	}

	err := <-errCh
	if err != nil {
		fmt.Println(ErrorStyle.Render(SymbolCross + " " + message + " failed"))
		return err
	}
	fmt.Println(SuccessStyle.Render(SymbolCheck + " " + message))
	return nil
}

// PromptContinue asks a yes/no question, defaulting to yes. Non-interactive
// runs always answer yes.
func PromptContinue(message string) bool {
	if !IsInteractive() {
		return true
	}

	fmt.Printf("%s [Y/n]: ", message)

	var response string
	fmt.Scanln(&response)

	return response == "" || response == "y" || response == "Y"
}
