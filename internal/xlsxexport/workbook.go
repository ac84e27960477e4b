// Package xlsxexport writes FieldRows as Excel workbooks.
package xlsxexport

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"nfseconv/internal/domain"
)

const (
	// RowsSheetName is the sheet holding invoice rows.
	RowsSheetName = "NFSe_Completa"
	// FailuresSheetName lists documents that could not be converted.
	FailuresSheetName = "Erros"
)

// FailureColumns is the header of the failures sheet.
var FailureColumns = []string{"Arquivo", "Erro"}

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// RowsSheet lays rows out under columns. A row lacking a column gets "".
func RowsSheet(name string, columns []string, rows []domain.FieldRow) Sheet {
	s := Sheet{Name: name, Columns: columns, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		vals := make([]string, len(columns))
		for j, col := range columns {
			vals[j] = r.Get(col)
		}
		s.Rows[i] = vals
	}
	return s
}

// FailuresSheet lists failed documents with their reasons.
func FailuresSheet(failures []domain.DocumentFailure) Sheet {
	s := Sheet{Name: FailuresSheetName, Columns: FailureColumns, Rows: make([][]string, len(failures))}
	for i, f := range failures {
		s.Rows[i] = []string{f.Name, f.Reason}
	}
	return s
}

// Write encodes sheets, in order, as one workbook to w. The first sheet is
// the active one.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("writing workbook: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("renaming sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s, header); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Encode returns the workbook bytes of sheets.
func Encode(sheets ...Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, sheets...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return fmt.Errorf("opening stream for sheet %q: %w", s.Name, err)
	}
	if len(s.Columns) > 0 {
		if err := sw.SetColWidth(1, len(s.Columns), 18); err != nil {
			return fmt.Errorf("setting column width on %q: %w", s.Name, err)
		}
	}

	if err := sw.SetRow("A1", cells(s.Columns), excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("writing header of %q: %w", s.Name, err)
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", i+1, s.Name, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet %q: %w", s.Name, err)
	}
	return nil
}

func cells(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
