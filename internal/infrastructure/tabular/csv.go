package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/kimseungO/news-sum/internal/snapshot"
)

const utf8BOM = "\ufeff"

// CSVCodec handles comma separated exports. Ragged rows are tolerated.
type CSVCodec struct{}

var _ snapshot.Codec = CSVCodec{}

// Extensions implements snapshot.Codec.
func (CSVCodec) Extensions() []string {
	return []string{".csv"}
}

// Decode implements snapshot.Codec.
func (CSVCodec) Decode(r io.Reader) (*snapshot.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return snapshot.FromRecords(records)
}

// Encode implements snapshot.Codec.
func (CSVCodec) Encode(w io.Writer, t *snapshot.Table) error {
	// BOM keeps spreadsheet apps from misreading Korean text
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
