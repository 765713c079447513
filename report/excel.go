package report

import (
	"fmt"

	"github.com/Ruscigno/PortfolioPulse/analysis"
	"github.com/xuri/excelize/v2"
)

// GenerateExcel writes the downloaded prices, their log returns and the
// descriptive statistics into an .xlsx workbook at path.
func GenerateExcel(prices, returns *analysis.Frame, stats []analysis.DescriptiveStats, path string) error {
	if prices.IsEmpty() {
		return fmt.Errorf("price frame is empty")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeFrameSheet(f, "data", prices, returns); err != nil {
		return err
	}
	if err := writeStatsSheet(f, "stats", stats); err != nil {
		return err
	}

	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex("data"); err == nil {
		f.SetActiveSheet(idx)
	}

	return f.SaveAs(path)
}

// writeFrameSheet lays out one row per date: price columns first, then a
// R<TICKER> column per ticker with the matching log return. The first
// trading day has no return and its return cells stay empty.
func writeFrameSheet(f *excelize.File, sheet string, prices, returns *analysis.Frame) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"date"}
	for _, ticker := range prices.Tickers {
		header = append(header, ticker)
	}
	if returns != nil {
		for _, ticker := range returns.Tickers {
			header = append(header, "R"+ticker)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, date := range prices.Dates {
		row := []interface{}{date.Format("2006-01-02")}
		for _, ticker := range prices.Tickers {
			series, err := prices.Series(ticker)
			if err != nil {
				return err
			}
			row = append(row, series[i])
		}
		if returns != nil {
			// Returns start one day after prices.
			j := i - (prices.Len() - returns.Len())
			for _, ticker := range returns.Tickers {
				if j < 0 {
					row = append(row, "")
					continue
				}
				series, err := returns.Series(ticker)
				if err != nil {
					return err
				}
				row = append(row, series[j])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeStatsSheet(f *excelize.File, sheet string, stats []analysis.DescriptiveStats) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"series", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range stats {
		row := []interface{}{s.Series, s.Count, s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
