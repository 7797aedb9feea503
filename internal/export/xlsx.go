// Package export writes sweep reports to spreadsheet formats.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/matsen/lfreval/internal/sweep"
)

// SummarySheet is the name of the first worksheet.
const SummarySheet = "Summary"

var summaryHeader = []interface{}{"node", "true_size", "best_k", "best_f1", "points", "failures"}

var seriesHeader = []interface{}{"k", "precision", "recall", "f1", "true_size", "proposed_size", "sym_diff_size", "error"}

// SeriesSheetName returns the worksheet name used for a query node.
func SeriesSheetName(node int) string {
	return "node_" + strconv.Itoa(node)
}

// BuildWorkbook creates a workbook with a summary sheet and one sheet per query node.
// The caller must Close the returned file.
func BuildWorkbook(report *sweep.Report) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming summary sheet: %w", err)
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing summary header: %w", err)
	}

	for i, s := range report.Series {
		if err := writeSeriesSheet(f, s); err != nil {
			f.Close()
			return nil, err
		}

		row := []interface{}{s.Node, s.TrueSize, "", "", len(s.Points), countFailures(s)}
		if best, ok := s.Best(); ok {
			row[2], row[3] = best.K, best.F1
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing summary row for node %d: %w", s.Node, err)
		}
	}

	return f, nil
}

// writeSeriesSheet adds the sheet for one query node.
func writeSeriesSheet(f *excelize.File, s sweep.Series) error {
	sheet := SeriesSheetName(s.Node)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &seriesHeader); err != nil {
		return fmt.Errorf("writing header of %s: %w", sheet, err)
	}

	for i, p := range s.Points {
		row := []interface{}{p.K, p.Precision, p.Recall, p.F1, p.TrueSize, p.ProposedSize, p.SymDiffSize, p.Error}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row for k=%d: %w", sheet, p.K, err)
		}
	}
	return nil
}

func countFailures(s sweep.Series) int {
	n := 0
	for _, p := range s.Points {
		if p.Failed() {
			n++
		}
	}
	return n
}

// WriteXLSX writes report as an .xlsx workbook at path.
func WriteXLSX(report *sweep.Report, path string) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
