package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

// Options controls dataset loading behavior.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects between ',' for .csv and '\t' for .tsv.
	Delimiter rune
	// NAValues are additional tokens treated as missing (besides the empty string).
	NAValues []string
	// Target names the binary response column. Optional at load time; required
	// before Target() or any modeling step.
	Target string
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{
		NAValues: []string{"", "NA", "N/A", "null", "NaN", "."},
	}
}

// Frame is the in-memory analytics frame all workflow steps operate on.
// It wraps a gota DataFrame and remembers which column is the response.
type Frame struct {
	df     dataframe.DataFrame
	name   string
	target string
}

// Load reads a dataset, dispatching on file extension: .xlsx goes through
// the spreadsheet reader, everything else is treated as delimited text.
func Load(path string, opt Options) (*Frame, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, "", opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited text file into a Frame. The first row must be a
// header. Column types are inferred by gota.
func LoadCSV(path string, opt Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	df := dataframe.ReadCSV(f,
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naTokens(opt)),
	)
	if df.Error() != nil {
		return nil, fmt.Errorf("read csv: %w", df.Error())
	}
	return newFrame(df, filepath.Base(path), opt.Target)
}

// FromRecords builds a Frame from an in-memory header+rows table, applying
// the same type inference as the CSV loader. The spreadsheet reader and
// tests feed through here.
func FromRecords(records [][]string, name string, opt Options) (*Frame, error) {
	if len(records) == 0 {
		return nil, errors.New("no records: missing header row")
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naTokens(opt)),
	)
	if df.Error() != nil {
		return nil, fmt.Errorf("load records: %w", df.Error())
	}
	return newFrame(df, name, opt.Target)
}

func newFrame(df dataframe.DataFrame, name, target string) (*Frame, error) {
	fr := &Frame{df: df, name: name}
	if df.Nrow() == 0 {
		return nil, errors.New("dataset is empty")
	}
	if target != "" {
		if err := fr.SetTarget(target); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

func naTokens(opt Options) []string {
	if len(opt.NAValues) > 0 {
		return opt.NAValues
	}
	return DefaultOptions().NAValues
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Name returns the dataset's display name (usually the source file base name).
func (f *Frame) Name() string { return f.name }

// Rows returns the number of data rows.
func (f *Frame) Rows() int { return f.df.Nrow() }

// Columns returns the column names in order.
func (f *Frame) Columns() []string { return f.df.Names() }

// SchemaColumn is one column of a frame schema: its name and inferred kind.
type SchemaColumn struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // numeric|bool|string
}

// Schema lists columns in frame order with the kind gota inferred for each.
type Schema struct {
	Target  string         `json:"target,omitempty"`
	Columns []SchemaColumn `json:"columns"`
}

// Schema reports the frame's column names and inferred kinds.
func (f *Frame) Schema() Schema {
	s := Schema{Target: f.target}
	for _, name := range f.df.Names() {
		kind := "string"
		switch f.df.Col(name).Type() {
		case series.Float, series.Int:
			kind = "numeric"
		case series.Bool:
			kind = "bool"
		}
		s.Columns = append(s.Columns, SchemaColumn{Name: name, Kind: kind})
	}
	return s
}

// Target returns the configured response column name.
func (f *Frame) Target() string { return f.target }

// SetTarget names the binary response column. The column must exist.
func (f *Frame) SetTarget(name string) error {
	if !f.HasColumn(name) {
		return fmt.Errorf("target column %q not found in dataset", name)
	}
	f.target = name
	return nil
}

// HasColumn reports whether the frame contains a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.df.Names() {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the raw values of a column as strings.
func (f *Frame) Column(name string) ([]string, error) {
	if !f.HasColumn(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return f.df.Col(name).Records(), nil
}

// Floats returns a column as float64 values. Non-numeric or missing entries
// come back as NaN, mirroring gota's semantics.
func (f *Frame) Floats(name string) ([]float64, error) {
	if !f.HasColumn(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return f.df.Col(name).Float(), nil
}

// NumericColumns returns the names of columns gota typed as numeric,
// excluding the target.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, name := range f.df.Names() {
		if name == f.target {
			continue
		}
		t := f.df.Col(name).Type()
		if t == series.Float || t == series.Int {
			out = append(out, name)
		}
	}
	return out
}

// Labels returns the response column as a 0/1 vector. Rows whose target is
// missing or not 0/1 produce an error; modeling requires a clean binary
// response.
func (f *Frame) Labels() ([]float64, error) {
	if f.target == "" {
		return nil, errors.New("no target column set")
	}
	vals := f.df.Col(f.target).Float()
	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("target %q has a missing value at row %d", f.target, i)
		}
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("target %q must be binary 0/1, got %g at row %d", f.target, v, i)
		}
		out[i] = v
	}
	return out, nil
}

// Matrix assembles a design matrix from the named feature columns. Rows with
// any missing value among the features are dropped; the returned index slice
// maps matrix rows back to frame rows and dropped counts how many were
// excluded.
func (f *Frame) Matrix(features []string) (x *mat.Dense, kept []int, dropped int, err error) {
	if len(features) == 0 {
		return nil, nil, 0, errors.New("no feature columns given")
	}
	cols := make([][]float64, len(features))
	for j, name := range features {
		v, err := f.Floats(name)
		if err != nil {
			return nil, nil, 0, err
		}
		cols[j] = v
	}
	n := f.Rows()
	kept = make([]int, 0, n)
rows:
	for i := 0; i < n; i++ {
		for j := range cols {
			if math.IsNaN(cols[j][i]) {
				dropped++
				continue rows
			}
		}
		kept = append(kept, i)
	}
	if len(kept) == 0 {
		return nil, nil, dropped, errors.New("all rows dropped: features contain only missing values")
	}
	x = mat.NewDense(len(kept), len(features), nil)
	for r, i := range kept {
		for j := range cols {
			x.Set(r, j, cols[j][i])
		}
	}
	return x, kept, dropped, nil
}

// Subset returns a new Frame containing the rows at the given indices, in
// the given order. Indices may repeat, which is what oversampling relies on.
func (f *Frame) Subset(idx []int) (*Frame, error) {
	sub := f.df.Subset(idx)
	if sub.Error() != nil {
		return nil, fmt.Errorf("subset: %w", sub.Error())
	}
	return &Frame{df: sub, name: f.name, target: f.target}, nil
}

// Append unions the rows of other onto f, returning a new Frame. Column
// sets must match.
func (f *Frame) Append(other *Frame) (*Frame, error) {
	joined := f.df.RBind(other.df)
	if joined.Error() != nil {
		return nil, fmt.Errorf("append rows: %w", joined.Error())
	}
	return &Frame{df: joined, name: f.name, target: f.target}, nil
}

// WithColumn returns a new Frame with vals added (or replaced) as a float
// column named name.
func (f *Frame) WithColumn(name string, vals []float64) (*Frame, error) {
	if len(vals) != f.Rows() {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(vals), f.Rows())
	}
	out := f.df.Mutate(series.New(vals, series.Float, name))
	if out.Error() != nil {
		return nil, fmt.Errorf("add column: %w", out.Error())
	}
	return &Frame{df: out, name: f.name, target: f.target}, nil
}

// Records returns the frame as a header+rows string table.
func (f *Frame) Records() [][]string {
	return f.df.Records()
}

// WriteCSV writes the frame to path as comma-separated text.
func (f *Frame) WriteCSV(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer out.Close()
	if err := f.df.WriteCSV(out); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
