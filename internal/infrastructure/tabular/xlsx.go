package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kimseungO/news-sum/internal/snapshot"
)

// XLSXCodec reads the first worksheet of a workbook and writes a
// single-sheet workbook.
type XLSXCodec struct {
	// Sheet names the output worksheet; empty keeps the excelize default.
	Sheet string
}

var _ snapshot.Codec = XLSXCodec{}

// Extensions implements snapshot.Codec.
func (XLSXCodec) Extensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// Decode implements snapshot.Codec.
func (XLSXCodec) Decode(r io.Reader) (*snapshot.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// raw values keep dates as serial numbers, whatever the cell format
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return snapshot.FromRecords(rows)
}

// Encode implements snapshot.Codec.
func (c XLSXCodec) Encode(w io.Writer, t *snapshot.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if c.Sheet != "" && c.Sheet != sheet {
		if err := f.SetSheetName(sheet, c.Sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		sheet = c.Sheet
	}

	for i, record := range t.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
