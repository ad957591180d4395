package menu

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	maxListHeight = 24
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

// TeaSelector runs each menu as a short-lived inline Bubble Tea program.
// No alternate screen is used, so views printed between menus stay in the
// terminal scrollback.
type TeaSelector struct {
	in  io.Reader
	out io.Writer
}

var _ Selector = &TeaSelector{}

// NewTeaSelector creates a selector reading keys from in and drawing to out.
// Nil values default to the process stdin and stdout.
func NewTeaSelector(in io.Reader, out io.Writer) *TeaSelector {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &TeaSelector{in: in, out: out}
}

func (s *TeaSelector) run(model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithInput(s.in), tea.WithOutput(s.out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("menu failed: %w", err)
	}
	return final, nil
}

func (s *TeaSelector) Select(title string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, ErrNoItems
	}

	final, err := s.run(newSelectModel(title, items))
	if err != nil {
		return Item{}, err
	}
	m := final.(selectModel)
	if m.err != nil {
		return Item{}, m.err
	}
	if m.chosen == nil {
		return Item{}, ErrBack
	}
	return *m.chosen, nil
}

func (s *TeaSelector) Prompt(title, initial string) (string, error) {
	final, err := s.run(newPromptModel(title, initial))
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if m.err != nil {
		return "", m.err
	}
	return m.value, nil
}

// listItem adapts Item to list.DefaultItem.
type listItem struct {
	item Item
}

func (i listItem) Title() string { return i.item.Label }
func (i listItem) Description() string { return i.item.Detail }
func (i listItem) FilterValue() string { return i.item.Label }

type selectModel struct {
	chosen *Item
	err    error
	list   list.Model
}

func newSelectModel(title string, items []Item) selectModel {
	withDetail := false
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = listItem{item: it}
		if it.Detail != "" {
			withDetail = true
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = withDetail
	if !withDetail {
		delegate.SetSpacing(0)
	}

	l := list.New(listItems, delegate, defaultWidth, listHeight(len(items), delegate.Height()+delegate.Spacing()))
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(len(items) > 10)
	l.SetFilteringEnabled(len(items) > 10)
	l.DisableQuitKeybindings()

	return selectModel{list: l}
}

// listHeight fits the list to its items, leaving room for title and help.
func listHeight(n, perItem int) int {
	h := n*perItem + 6
	if h > maxListHeight {
		return maxListHeight
	}
	return h
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = ErrInterrupted
			return m, tea.Quit
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			m.err = ErrBack
			return m, tea.Quit
		case "q":
			m.err = ErrBack
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(listItem); ok {
				chosen := it.item
				m.chosen = &chosen
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	if m.chosen != nil || m.err != nil {
		return ""
	}
	return m.list.View()
}

type promptModel struct {
	err   error
	input textinput.Model
	title string
	value string
	done  bool
}

func newPromptModel(title, initial string) promptModel {
	ti := textinput.New()
	ti.SetValue(initial)
	ti.CharLimit = 256
	ti.Width = defaultWidth - 4
	ti.Focus()

	return promptModel{input: ti, title: title}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			m.err = ErrInterrupted
			m.done = true
			return m, tea.Quit
		case "esc":
			m.err = ErrBack
			m.done = true
			return m, tea.Quit
		case "enter":
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}
	return titleStyle.Render(m.title) + "\n" + m.input.View() + "\n" + helpStyle.Render("enter to accept, esc to cancel") + "\n"
}
