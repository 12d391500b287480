package tui

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// View types accepted by Run.
const (
	ViewArray   = "read_array"
	ViewMatrix  = "read_matrix"
	ViewDataset = "dataset"
)

// Run starts the view for viewType over data.
// data must be *ArrayView, *MatrixView or *types.Dataset respectively.
func Run(viewType string, data any) error {
	model, err := newModel(viewType, data)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func newModel(viewType string, data any) (tea.Model, error) {
	if !IsTUISupported(viewType) {
		return nil, fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
	switch viewType {
	case ViewArray:
		if v, ok := data.(*ArrayView); ok && v.Page != nil {
			return NewArrayModel(v), nil
		}
	case ViewMatrix:
		if v, ok := data.(*MatrixView); ok && v.Page != nil {
			return NewMatrixModel(v), nil
		}
	case ViewDataset:
		if d, ok := datasetOf(data); ok {
			return NewDatasetModel(d), nil
		}
	}
	return nil, fmt.Errorf("invalid data type %T for %s", data, viewType)
}

// IsTUISupported returns true if the view type supports TUI mode.
func IsTUISupported(viewType string) bool {
	return slices.Contains(SupportedTUIViews(), viewType)
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{ViewArray, ViewMatrix, ViewDataset}
}
