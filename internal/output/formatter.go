package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter is the interface for output formatting
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintMessage(msg string)
	PrintError(err error)
	PrintHint(msg string)
}

// Column defines a column for table/list output
type Column struct {
	Name  string // Display name
	Key   string // Struct field name or map key
	Width int    // Width for rich mode (0 = auto)
}

// New creates a formatter for the specified mode writing to stdout/stderr
func New(mode string) Formatter {
	return NewWithWriters(mode, os.Stdout, os.Stderr)
}

// NewWithWriters creates a formatter that writes results to out and
// errors/hints to errOut.
func NewWithWriters(mode string, out, errOut io.Writer) Formatter {
	switch mode {
	case "json":
		return &jsonFormatter{out: out, errOut: errOut}
	case "rich":
		return &richFormatter{out: out, errOut: errOut, profile: termenv.ColorProfile()}
	default:
		return &plainFormatter{out: out, errOut: errOut}
	}
}

// jsonFormatter outputs JSON documents
type jsonFormatter struct {
	out, errOut io.Writer
}

func (f *jsonFormatter) encode(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) Print(data any) error {
	return f.encode(f.out, data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	v := reflect.Indirect(reflect.ValueOf(items))
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("PrintList requires a slice")
	}

	// Never emit null for an empty list
	if v.Len() == 0 {
		items = []any{}
	}
	return f.encode(f.out, map[string]any{
		"data":  items,
		"count": v.Len(),
	})
}

func (f *jsonFormatter) PrintMessage(msg string) {
	_ = f.encode(f.out, map[string]string{"message": msg})
}

func (f *jsonFormatter) PrintError(err error) {
	_ = f.encode(f.errOut, map[string]string{"error": err.Error()})
}

func (f *jsonFormatter) PrintHint(msg string) {
	// Hints are for humans; JSON consumers get the error object only
}

// plainFormatter outputs tab-separated values
type plainFormatter struct {
	out, errOut io.Writer
}

func (f *plainFormatter) Print(data any) error {
	v := reflect.Indirect(reflect.ValueOf(data))
	if v.Kind() != reflect.Struct || isScalarStruct(v) {
		fmt.Fprintf(f.out, "%s\n", formatValue(v))
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		fmt.Fprintf(f.out, "%s\t%s\n", t.Field(i).Name, formatValue(v.Field(i)))
	}
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintln(f.out, strings.Join(headers, "\t"))

	for _, row := range rows {
		fmt.Fprintln(f.out, strings.Join(row, "\t"))
	}
	return nil
}

func (f *plainFormatter) PrintMessage(msg string) {
	fmt.Fprintln(f.out, msg)
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.errOut, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.errOut, "hint: %v\n", msg)
}

// richFormatter outputs styled content for terminal
type richFormatter struct {
	out, errOut io.Writer
	profile     termenv.Profile
}

var (
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle    = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("8"))
)

// render applies style unless the terminal cannot show colour
func (f *richFormatter) render(style lipgloss.Style, s string) string {
	if f.profile == termenv.Ascii {
		return s
	}
	return style.Render(s)
}

func (f *richFormatter) Print(data any) error {
	v := reflect.Indirect(reflect.ValueOf(data))
	if v.Kind() != reflect.Struct || isScalarStruct(v) {
		fmt.Fprintf(f.out, "%s\n", f.render(valueStyle, formatValue(v)))
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		fmt.Fprintf(f.out, "%s: %s\n",
			f.render(keyStyle, t.Field(i).Name),
			f.render(valueStyle, formatValue(v.Field(i))),
		)
	}
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		f.PrintHint("nothing to show")
		return nil
	}

	RenderTable(f.out, columns, rows, func(s string) string { return f.render(keyStyle, s) })
	return nil
}

func (f *richFormatter) PrintMessage(msg string) {
	fmt.Fprintln(f.out, f.render(messageStyle, msg))
}

func (f *richFormatter) PrintError(err error) {
	fmt.Fprintln(f.errOut, f.render(errorStyle, "error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	fmt.Fprintln(f.errOut, f.render(hintStyle, "hint: "+msg))
}

// extractRows reads the columns out of a slice of structs or maps
func extractRows(items any, columns []Column) ([][]string, error) {
	v := reflect.Indirect(reflect.ValueOf(items))
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	rows := make([][]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := reflect.Indirect(v.Index(i))
		row := make([]string, len(columns))
		for j, col := range columns {
			var field reflect.Value
			switch item.Kind() {
			case reflect.Map:
				field = item.MapIndex(reflect.ValueOf(col.Key))
			case reflect.Struct:
				field = item.FieldByName(col.Key)
			}
			if field.IsValid() {
				row[j] = formatValue(field)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

var timeType = reflect.TypeOf(time.Time{})

// isScalarStruct reports struct types that print as a single value
func isScalarStruct(v reflect.Value) bool {
	if v.Type() == timeType {
		return true
	}
	_, ok := v.Interface().(fmt.Stringer)
	return ok
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", v.Interface())
}
