package types

// ArrayPage is one page of a decoded array file.
// Elements hold native Go values of the decoded element type
// (int8 ... float64).
type ArrayPage struct {
	Elements      []any       `json:"data" yaml:"data" msgpack:"data"`
	ElementType   ElementType `json:"element_type" yaml:"element_type" msgpack:"element_type"`
	Page          int         `json:"page" yaml:"page" msgpack:"page"`
	Limit         int         `json:"limit" yaml:"limit" msgpack:"limit"`
	TotalPages    uint64      `json:"total_pages" yaml:"total_pages" msgpack:"total_pages"`
	TotalElements uint64      `json:"total_elements" yaml:"total_elements" msgpack:"total_elements"`
}

// MatrixPage is a rectangular window of a decoded matrix file.
// Elements is row-major: Elements[r][c].
type MatrixPage struct {
	Elements      [][]any     `json:"data" yaml:"data" msgpack:"data"`
	ElementType   ElementType `json:"element_type" yaml:"element_type" msgpack:"element_type"`
	PageRow       int         `json:"page_row" yaml:"page_row" msgpack:"page_row"`
	PageCol       int         `json:"page_col" yaml:"page_col" msgpack:"page_col"`
	LimitRow      int         `json:"limit_row" yaml:"limit_row" msgpack:"limit_row"`
	LimitCol      int         `json:"limit_col" yaml:"limit_col" msgpack:"limit_col"`
	TotalPagesRow uint64      `json:"total_pages_row" yaml:"total_pages_row" msgpack:"total_pages_row"`
	TotalPagesCol uint64      `json:"total_pages_col" yaml:"total_pages_col" msgpack:"total_pages_col"`
	TotalRows     uint64      `json:"total_rows" yaml:"total_rows" msgpack:"total_rows"`
	TotalCols     uint64      `json:"total_cols" yaml:"total_cols" msgpack:"total_cols"`
}

// TextContent is a decoded text payload.
type TextContent struct {
	Key     string `json:"key" yaml:"key" msgpack:"key"`
	Content string `json:"content" yaml:"content" msgpack:"content"`
}
