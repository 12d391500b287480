package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pithecene-io/numstore/types"
)

// ArrayView is the payload for the array page browser.
// Fetch loads another page with the same limit and element type.
type ArrayView struct {
	Key   string
	Page  *types.ArrayPage
	Fetch func(page int) (*types.ArrayPage, error)
}

// MatrixView is the payload for the matrix window browser.
type MatrixView struct {
	Key   string
	Page  *types.MatrixPage
	Fetch func(pageRow, pageCol int) (*types.MatrixPage, error)
}

type arrayPageMsg struct{ page *types.ArrayPage }

type matrixPageMsg struct{ page *types.MatrixPage }

type fetchErrMsg struct{ err error }

// keyMap defines key bindings.
type keyMap struct {
	Quit  key.Binding
	Next  key.Binding
	Prev  key.Binding
	Up    key.Binding
	Down  key.Binding
	First key.Binding
	Last  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l", "n"),
		key.WithHelp("→/n", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "p"),
		key.WithHelp("←/p", "prev"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "rows up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "rows down"),
	),
	First: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first"),
	),
	Last: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last"),
	),
}

// ArrayModel is a Bubble Tea model browsing array pages.
type ArrayModel struct {
	key      string
	page     *types.ArrayPage
	fetch    func(page int) (*types.ArrayPage, error)
	help     help.Model
	loading  bool
	err      error
	width    int
	height   int
	quitting bool
}

// NewArrayModel creates an array browser starting at v.Page.
func NewArrayModel(v *ArrayView) ArrayModel {
	return ArrayModel{key: v.Key, page: v.Page, fetch: v.Fetch, help: help.New()}
}

// Init implements tea.Model.
func (m ArrayModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ArrayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case arrayPageMsg:
		m.page = msg.page
		m.loading = false
		m.err = nil
		return m, nil

	case fetchErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			return m.goTo(m.page.Page + 1)
		case key.Matches(msg, keys.Prev):
			return m.goTo(m.page.Page - 1)
		case key.Matches(msg, keys.First):
			return m.goTo(1)
		case key.Matches(msg, keys.Last):
			return m.goTo(int(m.page.TotalPages))
		}
	}

	return m, nil
}

func (m ArrayModel) goTo(page int) (tea.Model, tea.Cmd) {
	if m.loading || m.fetch == nil || !inRange(page, m.page.TotalPages) || page == m.page.Page {
		return m, nil
	}
	m.loading = true
	fetch := m.fetch
	return m, func() tea.Msg {
		p, err := fetch(page)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return arrayPageMsg{page: p}
	}
}

// View implements tea.Model.
func (m ArrayModel) View() string {
	if m.quitting {
		return ""
	}
	p := m.page

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Array " + m.key))
	b.WriteString("\n")
	b.WriteString(summary(
		"Type", p.ElementType.String(),
		"Page", fmt.Sprintf("%d/%d", p.Page, p.TotalPages),
		"Elements", strconv.FormatUint(p.TotalElements, 10),
	))
	b.WriteString("\n\n")

	if len(p.Elements) == 0 {
		b.WriteString(LabelStyle.Render("(empty)"))
	} else {
		offset := pageOffset(p.Page, p.Limit)
		rows := make([][]string, len(p.Elements))
		for i, v := range p.Elements {
			rows[i] = []string{strconv.FormatUint(offset+uint64(i), 10), fmt.Sprint(v)}
		}
		b.WriteString(grid([]string{"#", "value"}, rows))
	}

	b.WriteString(status(m.loading, m.err))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.ShortHelpView([]key.Binding{
		keys.Prev, keys.Next, keys.First, keys.Last, keys.Quit,
	})))
	return b.String()
}

// MatrixModel is a Bubble Tea model browsing matrix windows.
type MatrixModel struct {
	key      string
	page     *types.MatrixPage
	fetch    func(pageRow, pageCol int) (*types.MatrixPage, error)
	help     help.Model
	loading  bool
	err      error
	width    int
	height   int
	quitting bool
}

// NewMatrixModel creates a matrix browser starting at v.Page.
func NewMatrixModel(v *MatrixView) MatrixModel {
	return MatrixModel{key: v.Key, page: v.Page, fetch: v.Fetch, help: help.New()}
}

// Init implements tea.Model.
func (m MatrixModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m MatrixModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case matrixPageMsg:
		m.page = msg.page
		m.loading = false
		m.err = nil
		return m, nil

	case fetchErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		p := m.page
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			return m.goTo(p.PageRow, p.PageCol+1)
		case key.Matches(msg, keys.Prev):
			return m.goTo(p.PageRow, p.PageCol-1)
		case key.Matches(msg, keys.Down):
			return m.goTo(p.PageRow+1, p.PageCol)
		case key.Matches(msg, keys.Up):
			return m.goTo(p.PageRow-1, p.PageCol)
		case key.Matches(msg, keys.First):
			return m.goTo(1, 1)
		case key.Matches(msg, keys.Last):
			return m.goTo(int(p.TotalPagesRow), int(p.TotalPagesCol))
		}
	}

	return m, nil
}

func (m MatrixModel) goTo(pageRow, pageCol int) (tea.Model, tea.Cmd) {
	p := m.page
	if m.loading || m.fetch == nil ||
		!inRange(pageRow, p.TotalPagesRow) || !inRange(pageCol, p.TotalPagesCol) ||
		(pageRow == p.PageRow && pageCol == p.PageCol) {
		return m, nil
	}
	m.loading = true
	fetch := m.fetch
	return m, func() tea.Msg {
		next, err := fetch(pageRow, pageCol)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return matrixPageMsg{page: next}
	}
}

// View implements tea.Model.
func (m MatrixModel) View() string {
	if m.quitting {
		return ""
	}
	p := m.page

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Matrix " + m.key))
	b.WriteString("\n")
	b.WriteString(summary(
		"Type", p.ElementType.String(),
		"Shape", fmt.Sprintf("%dx%d", p.TotalRows, p.TotalCols),
		"Rows", fmt.Sprintf("%d/%d", p.PageRow, p.TotalPagesRow),
		"Cols", fmt.Sprintf("%d/%d", p.PageCol, p.TotalPagesCol),
	))
	b.WriteString("\n\n")

	if len(p.Elements) == 0 || len(p.Elements[0]) == 0 {
		b.WriteString(LabelStyle.Render("(empty)"))
	} else {
		rowOff := pageOffset(p.PageRow, p.LimitRow)
		colOff := pageOffset(p.PageCol, p.LimitCol)
		headers := make([]string, len(p.Elements[0])+1)
		headers[0] = "#"
		for c := range p.Elements[0] {
			headers[c+1] = strconv.FormatUint(colOff+uint64(c), 10)
		}
		rows := make([][]string, len(p.Elements))
		for r, vals := range p.Elements {
			row := make([]string, len(vals)+1)
			row[0] = strconv.FormatUint(rowOff+uint64(r), 10)
			for c, v := range vals {
				row[c+1] = fmt.Sprint(v)
			}
			rows[r] = row
		}
		b.WriteString(grid(headers, rows))
	}

	b.WriteString(status(m.loading, m.err))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.ShortHelpView([]key.Binding{
		keys.Prev, keys.Next, keys.Up, keys.Down, keys.First, keys.Last, keys.Quit,
	})))
	return b.String()
}

// grid renders a bordered table whose first column is an index column.
func grid(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(LabelStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return HeaderCellStyle
			}
			return CellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// summary renders label/value pairs on one line.
func summary(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, LabelStyle.Render(pairs[i]+":")+" "+ValueStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "   ")
}

func status(loading bool, err error) string {
	switch {
	case err != nil:
		return "\n" + ErrorStyle.Render("error: "+err.Error())
	case loading:
		return "\n" + LabelStyle.Render("loading...")
	default:
		return ""
	}
}

func inRange(page int, pages uint64) bool {
	return page >= 1 && uint64(page) <= pages
}

// pageOffset is the absolute index of the first element on a 1-based page.
func pageOffset(page, limit int) uint64 {
	if page < 1 || limit < 1 {
		return 0
	}
	return uint64(page-1) * uint64(limit)
}
