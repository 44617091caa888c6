package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"ifcmetrics/internal/report"
)

// renderXLSX writes a workbook with one sheet per report: a header row,
// one row per record, and the totals two rows below the last record.
func renderXLSX(w io.Writer, reports []*report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(f.GetActiveSheetIndex())
	for i, rep := range reports {
		name := sheetName(rep)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("xlsx: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: sheet %s: %w", name, err)
		}
		if err := fillSheet(f, name, rep); err != nil {
			return fmt.Errorf("xlsx: sheet %s: %w", name, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

// idHeaders are the fixed columns written before the field columns.
var idHeaders = []any{"ID", "GlobalId", "GUID", "Name"}

func fillSheet(f *excelize.File, sheet string, rep *report.Report) error {
	cols := columns(rep.Records)

	header := append([]any(nil), idHeaders...)
	for _, c := range cols {
		header = append(header, c.header())
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, r := range rep.Records {
		row := []any{r.ID, r.GlobalID, r.GUID, r.Name}
		for _, c := range cols {
			fv, ok := r.Field(c.name)
			if !ok {
				row = append(row, nil)
				continue
			}
			row = append(row, fv.Value.Interface())
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	totalRow := len(rep.Records) + 3
	for _, t := range rep.Totals {
		col := -1
		for j, c := range cols {
			if c.name == t.Field {
				col = len(idHeaders) + j + 1
			}
		}
		if col < 0 {
			continue
		}
		label, err := excelize.CoordinatesToCellName(len(idHeaders), totalRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, label, "Total"); err != nil {
			return err
		}
		axis, err := excelize.CoordinatesToCellName(col, totalRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, axis, t.Value); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, axis, &values)
}

// sheetName derives a valid worksheet name (at most 31 characters, none of
// : \ / ? * [ ]) from the report title.
func sheetName(rep *report.Report) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, rep.Title)
	if name == "" {
		name = string(rep.Kind)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
