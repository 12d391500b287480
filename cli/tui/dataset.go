package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/numstore/types"
)

// DatasetModel shows the summary of a created dataset.
type DatasetModel struct {
	data     *types.Dataset
	width    int
	height   int
	quitting bool
}

// NewDatasetModel creates a dataset summary model.
func NewDatasetModel(d *types.Dataset) DatasetModel {
	return DatasetModel{data: d}
}

func datasetOf(data any) (*types.Dataset, bool) {
	switch d := data.(type) {
	case *types.Dataset:
		return d, d != nil
	case types.Dataset:
		return &d, true
	default:
		return nil, false
	}
}

// Init implements tea.Model.
func (m DatasetModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m DatasetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m DatasetModel) View() string {
	if m.quitting {
		return ""
	}
	d := m.data

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Dataset " + d.Key))
	b.WriteString("\n")

	boxes := []string{renderStatBox("Kind", string(d.Kind))}
	switch d.Kind {
	case types.KindArray:
		boxes = append(boxes,
			renderStatBox("Type", d.ElementType.String()),
			renderStatBox("Length", strconv.FormatUint(d.Length, 10)))
	case types.KindMatrix:
		boxes = append(boxes,
			renderStatBox("Type", d.ElementType.String()),
			renderStatBox("Shape", fmt.Sprintf("%dx%d", d.Rows, d.Cols)))
	}
	boxes = append(boxes, renderStatBox("Bytes", strconv.FormatInt(d.Bytes, 10)))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("Press q or Ctrl+C to quit"))
	return b.String()
}

func renderStatBox(label, value string) string {
	content := StatLabelStyle.Render(label) + "\n" + StatValueStyle.Render(value)
	return StatBoxStyle.Render(content)
}

// RenderDatasetStatic renders the dataset summary without a full TUI.
func RenderDatasetStatic(d *types.Dataset) string {
	model := NewDatasetModel(d)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
