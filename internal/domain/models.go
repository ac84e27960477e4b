package domain

import (
	"bytes"
	"encoding/json"
)

// SourceFileColumn is appended to rows merged from several documents.
const SourceFileColumn = "_Arquivo"

// Field is one column/value pair of a FieldRow.
type Field struct {
	Column string
	Value  string
}

// FieldRow is one flat spreadsheet row. Columns keep their insertion order
// and every value is a string; missing source data is the empty string.
// A FieldRow is never mutated after construction.
type FieldRow struct {
	fields []Field
	index  map[string]int
}

// NewFieldRow builds a row with the given columns, in order, taking values
// from values. Columns absent from values are set to "".
func NewFieldRow(columns []string, values map[string]string) FieldRow {
	r := FieldRow{
		fields: make([]Field, len(columns)),
		index:  make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		r.fields[i] = Field{Column: col, Value: values[col]}
		r.index[col] = i
	}
	return r
}

// Len returns the number of columns.
func (r FieldRow) Len() int {
	return len(r.fields)
}

// Columns returns the column names in order.
func (r FieldRow) Columns() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Column
	}
	return out
}

// Values returns the cell values in column order.
func (r FieldRow) Values() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Value
	}
	return out
}

// Fields returns a copy of the column/value pairs.
func (r FieldRow) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value of column, or "" when the row has no such column.
func (r FieldRow) Get(column string) string {
	if i, ok := r.index[column]; ok {
		return r.fields[i].Value
	}
	return ""
}

// Has reports whether the row carries column.
func (r FieldRow) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// With returns a copy of the row with column set to value. An existing
// column keeps its position; a new one is appended.
func (r FieldRow) With(column, value string) FieldRow {
	out := FieldRow{
		fields: make([]Field, len(r.fields), len(r.fields)+1),
		index:  make(map[string]int, len(r.fields)+1),
	}
	copy(out.fields, r.fields)
	for k, v := range r.index {
		out.index[k] = v
	}
	if i, ok := out.index[column]; ok {
		out.fields[i].Value = value
		return out
	}
	out.index[column] = len(out.fields)
	out.fields = append(out.fields, Field{Column: column, Value: value})
	return out
}

// MarshalJSON encodes the row as a JSON object preserving column order.
func (r FieldRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DocumentInput is one named raw document of unknown encoding.
type DocumentInput struct {
	Name    string
	Content []byte
}

// DocumentResult is the extraction outcome for one document. Err is set
// when the document could not be parsed; Rows is then empty.
type DocumentResult struct {
	Name string
	Rows []FieldRow
	Err  error
}

// ExtractStats counts the invoice records seen in one document.
type ExtractStats struct {
	Records int // CompNfse elements found
	Skipped int // records without InfNfse
}

// DocumentFailure describes a document left out of a batch output.
type DocumentFailure struct {
	Name   string `json:"file"`
	Reason string `json:"error"`
}
