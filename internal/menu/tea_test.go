package menu

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func sampleItems() []Item {
	return []Item{
		{Label: "Repositories", Value: "repos"},
		{Label: "Pipelines", Value: "pipelines"},
		{Label: "Quit", Value: "quit"},
	}
}

func sendSelect(m selectModel, msgs ...tea.Msg) (selectModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(selectModel)
	}
	return m, cmd
}

func TestSelectModel_EnterChoosesFirst(t *testing.T) {
	m, cmd := sendSelect(newSelectModel("Main menu", sampleItems()), key("enter"))

	require.NotNil(t, m.chosen)
	assert.Equal(t, "repos", m.chosen.Value)
	assert.NoError(t, m.err)
	assert.True(t, isQuit(t, cmd))
	assert.Empty(t, m.View())
}

func TestSelectModel_MoveThenEnter(t *testing.T) {
	m, _ := sendSelect(newSelectModel("Main menu", sampleItems()), key("down"), key("down"), key("enter"))

	require.NotNil(t, m.chosen)
	assert.Equal(t, "quit", m.chosen.Value)
}

func TestSelectModel_Back(t *testing.T) {
	for _, k := range []string{"esc", "q"} {
		t.Run(k, func(t *testing.T) {
			m, cmd := sendSelect(newSelectModel("Main menu", sampleItems()), key(k))

			assert.ErrorIs(t, m.err, ErrBack)
			assert.Nil(t, m.chosen)
			assert.True(t, isQuit(t, cmd))
		})
	}
}

func TestSelectModel_Interrupt(t *testing.T) {
	m, cmd := sendSelect(newSelectModel("Main menu", sampleItems()), key("ctrl+c"))

	assert.ErrorIs(t, m.err, ErrInterrupted)
	assert.True(t, isQuit(t, cmd))
}

func TestSelectModel_ViewShowsTitleAndItems(t *testing.T) {
	view := newSelectModel("Main menu", sampleItems()).View()

	assert.Contains(t, view, "Main menu")
	assert.Contains(t, view, "Repositories")
	assert.Contains(t, view, "Pipelines")
}

func TestListHeight(t *testing.T) {
	assert.Equal(t, 9, listHeight(3, 1))
	assert.Equal(t, maxListHeight, listHeight(100, 3))
}

func sendPrompt(m promptModel, msgs ...tea.Msg) (promptModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(promptModel)
	}
	return m, cmd
}

func TestPromptModel_AcceptInitial(t *testing.T) {
	m, cmd := sendPrompt(newPromptModel("Approval summary", "Approved via awr"), key("enter"))

	assert.Equal(t, "Approved via awr", m.value)
	assert.NoError(t, m.err)
	assert.True(t, isQuit(t, cmd))
}

func TestPromptModel_Edit(t *testing.T) {
	m, _ := sendPrompt(newPromptModel("Approval summary", "ok"),
		key("backspace"), key("backspace"), key("LGTM"), key("enter"))

	assert.Equal(t, "LGTM", m.value)
}

func TestPromptModel_Cancel(t *testing.T) {
	m, cmd := sendPrompt(newPromptModel("Approval summary", "ok"), key("esc"))

	assert.ErrorIs(t, m.err, ErrBack)
	assert.True(t, isQuit(t, cmd))
}

func TestPromptModel_View(t *testing.T) {
	view := newPromptModel("Approval summary", "ok").View()
	assert.True(t, strings.Contains(view, "Approval summary"))
	assert.Contains(t, view, "esc to cancel")
}

func TestTeaSelector_NoItems(t *testing.T) {
	s := NewTeaSelector(strings.NewReader(""), &bytes.Buffer{})

	_, err := s.Select("Nothing", nil)
	assert.ErrorIs(t, err, ErrNoItems)
}
