package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"redbird/internal"
)

var exportHeaders = []string{"title", "subtitle", "address", "icon", "slug"}

func houseFields(h internal.House) []string {
	return []string{h.Title, h.Subtitle, h.Address, h.Icon, h.Slug}
}

func ExportHousesToXLSX(houses []internal.House, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, house := range houses {
		r := i + 2
		for col, value := range houseFields(house) {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportHousesToCSV writes the listing in the same line-scoped format the
// tabular parser reads.
func ExportHousesToCSV(w io.Writer, houses []internal.House) error {
	if _, err := fmt.Fprintln(w, FormatRecord(exportHeaders)); err != nil {
		return err
	}
	for _, h := range houses {
		if _, err := fmt.Fprintln(w, FormatRecord(houseFields(h))); err != nil {
			return err
		}
	}
	return nil
}

// ExportMatchesToXLSX writes a reconciliation report for map:check.
func ExportMatchesToXLSX(matches []internal.PinMatch, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"title", "address", "match_status", "confidence", "match_reason", "pin_house_name", "pin_address", "pin_lat", "pin_lon", "candidate2_name", "candidate2_score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, m := range matches {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, m.House.Title)
		set(2, m.House.Address)
		set(3, string(m.Status))
		set(4, m.Confidence)
		set(5, string(m.Reason))
		if m.Pin != nil {
			set(6, m.Pin.HouseName)
			set(7, m.Pin.Address)
			set(8, m.Pin.Lat)
			set(9, m.Pin.Lon)
		}
		if len(m.Candidates) > 1 {
			set(10, m.Candidates[1].HouseName)
			set(11, m.Candidates[1].Score)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
