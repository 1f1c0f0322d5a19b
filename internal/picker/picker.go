// Package picker is the interactive terminal checklist over a session's tree.
package picker

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/hayeah/jackdir/internal/listing"
	"github.com/hayeah/jackdir/internal/session"
	"github.com/hayeah/jackdir/internal/tree"
)

// ExitState indicates how the program is exiting
type ExitState int

const (
	ExitStateNone    ExitState = iota // Not exiting
	ExitStateAbort                    // Exiting without confirming (Esc, Ctrl+C)
	ExitStateConfirm                  // Exiting with confirmation (Enter)
)

type item struct {
	path  string
	line  string // indented name as shown in the unfiltered list
	isDir bool
}

var (
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	previewStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).PaddingLeft(1)
	statusStyle  = lipgloss.NewStyle().Faint(true)
)

// model is the Bubble Tea model of the picker.
type model struct {
	sess *session.Session

	textInput  textinput.Model
	filtering  bool
	searchTerm string

	allItems      []item
	filteredItems []item

	cursor    int
	exitState ExitState

	list    viewport.Model
	preview viewport.Model
	ready   bool
}

// Run shows the picker for sess until the user confirms or aborts. The
// selection is made on sess directly; Run reports whether it was confirmed.
func Run(sess *session.Session) (bool, error) {
	if sess.Tree() == nil {
		return false, session.ErrNoTree
	}

	// Output the TUI to stderr so stdout stays pipeable
	p := tea.NewProgram(newModel(sess), tea.WithOutput(os.Stderr), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(model)
	if !ok {
		return false, fmt.Errorf("could not get final model state")
	}
	return m.exitState == ExitStateConfirm, nil
}

func newModel(sess *session.Session) model {
	ti := textinput.New()
	ti.Placeholder = "Type to fuzzy-search..."
	ti.Prompt = "/ "
	ti.CharLimit = 0

	items := flatten(sess.Tree().Root())
	return model{
		sess:          sess,
		textInput:     ti,
		allItems:      items,
		filteredItems: items,
		list:          viewport.New(0, 0),
		preview:       viewport.New(0, 0),
	}
}

// flatten lists the tree in listing order.
func flatten(root *tree.Node) []item {
	less := listing.NewComparator()

	var items []item
	type frame struct {
		node  *tree.Node
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		items = append(items, item{
			path:  f.node.Path,
			line:  listing.Line(f.node, f.depth),
			isDir: f.node.IsDir(),
		})

		children := slices.Clone(f.node.Children)
		slices.SortFunc(children, less.Compare)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
	return items
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.exitState != ExitStateNone {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.exitState = ExitStateAbort
		return m, tea.Quit
	case "esc", "enter":
		m.filtering = false
		m.textInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if term := m.textInput.Value(); term != m.searchTerm {
		m.searchTerm = term
		m.refilter()
		m.refresh()
	}
	return m, cmd
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.exitState = ExitStateAbort
		return m, tea.Quit

	case "enter":
		m.exitState = ExitStateConfirm
		return m, tea.Quit

	case "/":
		m.filtering = true
		return m, m.textInput.Focus()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.filteredItems)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		m.cursor = max(len(m.filteredItems)-1, 0)

	case "pgup":
		m.cursor = max(m.cursor-m.list.Height, 0)

	case "pgdown":
		m.cursor = max(min(m.cursor+m.list.Height, len(m.filteredItems)-1), 0)

	case " ":
		if len(m.filteredItems) > 0 {
			p := m.filteredItems[m.cursor].path
			m.sess.Toggle(p, !m.sess.IsSelected(p))
		}

	case "ctrl+a":
		m.setFiltered(true)

	case "ctrl+q":
		m.setFiltered(false)

	case "u", "ctrl+z":
		m.sess.Undo()

	case "ctrl+r":
		m.sess.Redo()

	default:
		return m, nil
	}

	m.refresh()
	return m, nil
}

// setFiltered checks or unchecks every visible item.
func (m *model) setFiltered(checked bool) {
	paths := make([]string, len(m.filteredItems))
	for i, it := range m.filteredItems {
		paths[i] = it.path
	}
	m.sess.ToggleAll(paths, checked)
}

func (m *model) resize(width, height int) {
	headerHeight := lipgloss.Height(m.textInput.View()) + 1
	footerHeight := 2
	bodyHeight := max(height-headerHeight-footerHeight, 1)

	m.list.Width = width / 2
	m.list.Height = bodyHeight
	m.preview.Width = width - m.list.Width - 2
	m.preview.Height = bodyHeight
}

// refilter updates m.filteredItems based on the current fuzzy search term.
func (m *model) refilter() {
	if m.searchTerm == "" {
		m.filteredItems = m.allItems
	} else {
		paths := make([]string, len(m.allItems))
		for i, it := range m.allItems {
			paths[i] = it.path
		}
		matches := fuzzy.Find(m.searchTerm, paths)

		// keep tree order rather than score order
		idx := make([]int, 0, len(matches))
		for _, match := range matches {
			idx = append(idx, match.Index)
		}
		slices.Sort(idx)

		filtered := make([]item, 0, len(idx))
		for _, i := range idx {
			filtered = append(filtered, m.allItems[i])
		}
		m.filteredItems = filtered
	}
	m.cursor = max(min(m.cursor, len(m.filteredItems)-1), 0)
}

// refresh rebuilds both panes from the session.
func (m *model) refresh() {
	var sb strings.Builder
	for i, it := range m.filteredItems {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}
		check := " "
		if m.sess.IsSelected(it.path) {
			check = "✓"
		}

		// the flat tree view loses meaning under a filter
		label := it.line
		if m.searchTerm != "" {
			label = it.path
			if it.isDir {
				label += listing.DirSuffix
			}
		}

		line := fmt.Sprintf("%s [%s] %s", cursor, check, label)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	m.list.SetContent(sb.String())
	m.ensureCursorVisible()

	m.preview.SetContent(m.sess.Listing().String())
}

// ensureCursorVisible makes sure the cursor is visible in the list
func (m *model) ensureCursorVisible() {
	top := m.list.YOffset
	bottom := m.list.YOffset + m.list.Height - 1

	if m.cursor < top {
		m.list.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.textInput.View() + "\n"
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), previewStyle.Render(m.preview.View()))

	status := fmt.Sprintf("%d/%d items, %s", len(m.filteredItems), len(m.allItems), m.sess.Listing().Summary())
	hint := "(↑/↓ navigate, Space toggle, / search, u undo, Ctrl+R redo, Enter confirm, Esc abort)"
	if m.filtering {
		hint = "(type to search, Enter/Esc to return to the list)"
	}
	footer := "\n" + status + "\n" + statusStyle.Render(hint)

	return header + body + footer
}
