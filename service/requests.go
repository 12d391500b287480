package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pithecene-io/numstore/types"
)

// RandomArrayRequest creates an array of uniformly sampled values.
type RandomArrayRequest struct {
	Name string            `json:"name" validate:"required,dataset_name"`
	Type types.ElementType `json:"type"`
	Size uint64            `json:"size"`
	Min  string            `json:"min" validate:"required"`
	Max  string            `json:"max" validate:"required"`
}

// OrderedArrayRequest creates an array filled by an ordered pattern.
type OrderedArrayRequest struct {
	Name     string            `json:"name" validate:"required,dataset_name"`
	Type     types.ElementType `json:"type"`
	Size     uint64            `json:"size"`
	Pattern  types.FillPattern `json:"pattern" validate:"omitempty,oneof=ascending descending random"`
	Start    string            `json:"start" validate:"required"`
	Step     string            `json:"step" validate:"required"`
	Interval uint64            `json:"interval" validate:"gte=1"`
}

// RandomMatrixRequest creates a matrix of uniformly sampled values.
type RandomMatrixRequest struct {
	Name string            `json:"name" validate:"required,dataset_name"`
	Type types.ElementType `json:"type"`
	Rows uint64            `json:"rows"`
	Cols uint64            `json:"cols"`
	Min  string            `json:"min" validate:"required"`
	Max  string            `json:"max" validate:"required"`
}

// OrderedMatrixRequest creates a matrix filled by an ordered pattern.
type OrderedMatrixRequest struct {
	Name     string            `json:"name" validate:"required,dataset_name"`
	Type     types.ElementType `json:"type"`
	Rows     uint64            `json:"rows"`
	Cols     uint64            `json:"cols"`
	Pattern  types.FillPattern `json:"pattern" validate:"omitempty,oneof=ascending descending random"`
	Start    string            `json:"start" validate:"required"`
	Step     string            `json:"step" validate:"required"`
	Interval uint64            `json:"interval" validate:"gte=1"`
}

// TextRequest creates a text dataset.
type TextRequest struct {
	Name    string `json:"name" validate:"required,dataset_name"`
	Content string `json:"content"`
}

// MatrixQuery selects a matrix window. Type is an optional decode hint.
type MatrixQuery struct {
	PageRow  int               `json:"page_row"`
	LimitRow int               `json:"limit_row" validate:"gte=1"`
	PageCol  int               `json:"page_col"`
	LimitCol int               `json:"limit_col" validate:"gte=1"`
	Type     types.ElementType `json:"type"`
}

// newValidator returns a validator with the numstore-specific tags registered.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dataset_name", func(fl validator.FieldLevel) bool {
		return validName(fl.Field().String())
	})
	return v
}

// validName accepts a single path segment usable as an owner or file name.
func validName(s string) bool {
	if s == "" || s == "." || s == ".." || len(s) > 255 {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
