package reporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"tmdb-api-tester/internal/types"
)

const (
	sheetName      = "Results"
	patternType    = "pattern"
	patternValue   = 1
	errorBgColor   = "FF5900"
	warningBgColor = "FFEB9C"
)

var excelHeaders = []string{"Name", "Kind", "Status", "Failure", "Message", "Elapsed (ms)", "Details"}

var columnWidths = map[string]float64{"A": 34, "B": 10, "C": 8, "D": 10, "E": 60, "F": 12, "G": 80}

// generateXLSXReport writes one row per result; failures are filled red and advisories amber
func (r *Reporter) generateXLSXReport(report Report) (string, error) {
	reportPath, err := r.reportPath(report, "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", err
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return "", err
		}
	}

	errorStyle, err := fillStyle(f, errorBgColor)
	if err != nil {
		return "", err
	}
	warningStyle, err := fillStyle(f, warningBgColor)
	if err != nil {
		return "", err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", err
	}

	for i, header := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", headerStyle); err != nil {
		return "", err
	}

	for i, res := range report.Results {
		row := i + 2
		values := []interface{}{
			res.Name,
			string(res.Kind),
			res.Status,
			string(res.Failure),
			res.Message,
			res.ElapsedMS,
			strings.Join(detailLines(res.Details), "\n"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return "", err
			}
		}

		style := 0
		switch res.Status {
		case types.StatusFail:
			style = errorStyle
		case types.StatusWarn:
			style = warningStyle
		}
		if style != 0 {
			if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), style); err != nil {
				return "", err
			}
		}
	}

	summaryRow := len(report.Results) + 3
	summary := [][2]interface{}{
		{"Run", report.RunID},
		{"Base URL", report.BaseURL},
		{"Total", report.Total},
		{"Passed", report.Passed},
		{"Failed", report.Failed},
		{"Advisory", report.Advisory},
		{"Success rate", fmt.Sprintf("%.1f%%", report.SuccessRate)},
	}
	for i, kv := range summary {
		row := summaryRow + i
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(reportPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return reportPath, nil
}

func fillStyle(f *excelize.File, bg string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    patternType,
			Pattern: patternValue,
			Color:   []string{bg},
		},
	})
}
