// Package render provides centralized output rendering for the numstore CLI.
//
// Format selection rules:
//   - If output is a TTY, default to table
//   - If output is not a TTY, default to json
//   - --format flag always overrides defaults
//   - Invalid formats are errors
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/numstore/cli/tui"
	"github.com/pithecene-io/numstore/types"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatTable   Format = "table"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format string, returning an error for invalid formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	case "yaml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	case "":
		return "", nil // Let caller decide default
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, yaml, or msgpack)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer creates a renderer from CLI context.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	// Apply default format based on TTY detection
	if format == "" {
		if isTTY(out) {
			format = FormatTable
		} else {
			format = FormatJSON
		}
	}

	return &Renderer{format: format, out: out}, nil
}

// NewRendererWithWriter creates a renderer with a custom writer (for testing).
func NewRendererWithWriter(format Format, out io.Writer) *Renderer {
	return &Renderer{format: format, out: out}
}

// Format returns the selected output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render outputs the data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(data)
	case FormatTable:
		return r.renderTable(data)
	case FormatYAML:
		return r.renderYAML(data)
	case FormatMsgpack:
		return r.renderMsgpack(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// RenderTUI initiates TUI mode for the given view type.
// TUI is opt-in only and read-only only.
func (r *Renderer) RenderTUI(viewType string, data any) error {
	if !tui.IsTUISupported(viewType) {
		return fmt.Errorf("--tui is not supported for %s", viewType)
	}
	return tui.Run(viewType, data)
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Renderer) renderYAML(data any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Renderer) renderMsgpack(data any) error {
	enc := msgpack.NewEncoder(r.out)
	enc.UseCompactInts(true)
	return enc.Encode(data)
}

func (r *Renderer) renderTable(data any) error {
	switch d := data.(type) {
	case *types.ArrayPage:
		return r.renderArrayPage(d)
	case *types.MatrixPage:
		return r.renderMatrixPage(d)
	case *types.TextContent:
		_, err := fmt.Fprintln(r.out, d.Content)
		return err
	default:
		return r.renderStructTable(data)
	}
}

func (r *Renderer) renderArrayPage(p *types.ArrayPage) error {
	fmt.Fprintf(r.out, "type: %s  page: %d/%d  elements: %d\n",
		p.ElementType, p.Page, p.TotalPages, p.TotalElements)
	if len(p.Elements) == 0 {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tvalue\t")
	first := offset(p.Page, p.Limit)
	for i, v := range p.Elements {
		fmt.Fprintf(w, "%d\t%v\t\n", first+uint64(i), v)
	}
	return w.Flush()
}

func (r *Renderer) renderMatrixPage(p *types.MatrixPage) error {
	fmt.Fprintf(r.out, "type: %s  shape: %dx%d  rows: %d/%d  cols: %d/%d\n",
		p.ElementType, p.TotalRows, p.TotalCols,
		p.PageRow, p.TotalPagesRow, p.PageCol, p.TotalPagesCol)
	if len(p.Elements) == 0 || len(p.Elements[0]) == 0 {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	rowOff := offset(p.PageRow, p.LimitRow)
	colOff := offset(p.PageCol, p.LimitCol)

	header := make([]string, 0, len(p.Elements[0])+1)
	header = append(header, "#")
	for c := range p.Elements[0] {
		header = append(header, strconv.FormatUint(colOff+uint64(c), 10))
	}
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	for i, row := range p.Elements {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, strconv.FormatUint(rowOff+uint64(i), 10))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	return w.Flush()
}

func (r *Renderer) renderStructTable(data any) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || (omitEmpty(field) && v.Field(i).IsZero()) {
				continue
			}
			fmt.Fprintf(w, "%s:\t%s\n", getFieldName(field), formatValue(v.Field(i)))
		}
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		vals := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			keys = append(keys, k)
			vals[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s:\t%s\n", k, formatValue(vals[k]))
		}
	default:
		fmt.Fprintf(w, "%v\n", data)
	}

	return nil
}

func getFieldName(f reflect.StructField) string {
	// Prefer json tag name
	if tag := f.Tag.Get("json"); tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" && parts[0] != "-" {
			return parts[0]
		}
	}
	return strings.ToLower(f.Name)
}

func omitEmpty(f reflect.StructField) bool {
	return strings.Contains(f.Tag.Get("json"), ",omitempty")
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, fmt.Sprintf("%v=%v", k.Interface(), v.MapIndex(k).Interface()))
		}
		sort.Strings(keys)
		return strings.Join(keys, " ")
	case reflect.Struct:
		return "{...}"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// offset is the absolute index of the first element on a 1-based page.
func offset(page, limit int) uint64 {
	if page < 1 || limit < 1 {
		return 0
	}
	return uint64(page-1) * uint64(limit)
}

// isTTY returns true if the writer is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
