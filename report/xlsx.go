package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	moneyFormat = "#,##0.00"
	dateFormat  = "dd/mm/yyyy"
)

// columnWidths follow Columns.
var columnWidths = []float64{12, 12, 60, 12, 8, 16, 14, 14, 20, 70}

// WriteXLSX saves the workbook: the final sheet first, then the validation sheet.
func WriteXLSX(path string, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// Workbook builds the in-memory workbook.
func Workbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := Title(r.Context)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(ValidationSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeFinalSheet(f, sheet, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("report: final sheet: %w", err)
	}
	if err := writeValidationSheet(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("report: validation sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Family: "Calibri", Size: 8, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"000000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeFinalSheet(f *excelize.File, sheet string, r Report) error {
	if err := writeHeader(f, sheet, Columns); err != nil {
		return err
	}

	money := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &money})
	if err != nil {
		return err
	}
	date := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &date})
	if err != nil {
		return err
	}

	comp := Competency(r.Context)
	for i, res := range r.Results {
		line := i + 2
		row := []any{nil, nil, res.Employee.Union, comp, res.PayableDays,
			toFloat(res.UnitValue), toFloat(res.Total), toFloat(res.EmployerShare), toFloat(res.EmployeeShare),
			res.Observation}
		if res.Employee.ID != nil {
			row[0] = int64(*res.Employee.ID)
		}
		if res.AdmissionDate != nil {
			row[1] = res.AdmissionDate.Time
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if n := len(r.Results); n > 0 {
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", n+1), dateStyle); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "F2", fmt.Sprintf("I%d", n+1), moneyStyle); err != nil {
			return err
		}
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeValidationSheet(f *excelize.File, r Report) error {
	if err := writeHeader(f, ValidationSheet, []string{"Validações", "Check"}); err != nil {
		return err
	}
	for i, l := range r.ValidationLines() {
		row := []any{l.Label, l.Value}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ValidationSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ValidationSheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(ValidationSheet, "B", "B", 80)
}
