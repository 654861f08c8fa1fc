// Package report renders tabular data into .xlsx workbooks.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	HeaderFill  = "4F5F96"
	HeaderColor = "FFFFFF"
	Creator     = "Fieldkeeper"
)

// Column is a header label and its width in characters.
type Column struct {
	Header string
	Width  float64
}

// Sheet is one worksheet: a header row followed by Rows. Cells may be
// string, float64, int or bool; numbers stay numeric in the output.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Properties end up in the document core properties.
type Properties struct {
	Title   string
	Created time.Time
}

// Build writes sheets, in order, into a new workbook and returns its bytes.
// The first sheet replaces excelize's default "Sheet1" and stays active.
func Build(sheets []Sheet, props Properties) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: HeaderColor},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HeaderFill}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", s.Name, err)
		}

		if err := writeSheet(f, s, header); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	created := props.Created
	if created.IsZero() {
		created = time.Now()
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        Creator,
		LastModifiedBy: Creator,
		Title:          props.Title,
		Created:        created.UTC().Format(time.RFC3339),
		Modified:       created.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("doc props: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	headers := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if c.Width > 0 {
			if err := f.SetColWidth(s.Name, col, col, c.Width); err != nil {
				return err
			}
		}
	}

	if err := f.SetSheetRow(s.Name, "A1", &headers); err != nil {
		return err
	}
	if len(s.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(s.Name, cell, &r); err != nil {
			return err
		}
	}
	return nil
}
