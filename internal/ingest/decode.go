package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"claimdesk/internal"
)

// Table is one decoded claims extract: the trimmed non-empty headers
// in source order, and every data row keyed by those headers. Decoding
// is all-or-nothing; a Table is never partial.
type Table struct {
	Headers []string
	Rows    []internal.RawRow
}

// DecodeFile dispatches on the file extension.
func DecodeFile(path string) (*Table, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return DecodeXLSX(blob)
	case ".csv":
		return DecodeCSV(blob)
	case ".html", ".htm":
		return DecodeHTML(blob)
	default:
		return nil, fmt.Errorf("unsupported extract format: %s", filepath.Ext(path))
	}
}

// DecodeXLSX reads the first worksheet: row 1 is the header row, the
// rest are data. Columns with an empty header are ignored; rows with
// no values at all are skipped.
func DecodeXLSX(blob []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to parse the xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("file contains no worksheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty or contains no readable data")
	}

	return buildTable(rows)
}

// DecodeCSV reads a comma-separated extract with the same header
// contract as DecodeXLSX.
func DecodeCSV(blob []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(blob))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse the csv file: %w", err)
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty or contains no readable data")
	}

	return buildTable(rows)
}

// DecodeHTML reads the first <table> in the document; its first row is
// the header row.
func DecodeHTML(blob []byte) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to parse the html file: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("file is empty or contains no readable data")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cell.Text())
		})
		rows = append(rows, cells)
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty or contains no readable data")
	}

	return buildTable(rows)
}

func buildTable(rows [][]string) (*Table, error) {
	headerCells := rows[0]

	headers := make([]string, 0, len(headerCells))
	columns := make([]int, 0, len(headerCells))
	for i, cell := range headerCells {
		header := strings.TrimSpace(cell)
		if header == "" {
			continue
		}
		headers = append(headers, header)
		columns = append(columns, i)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("could not detect any valid column headers in the first row")
	}

	out := make([]internal.RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := internal.RawRow{}
		for pos, col := range columns {
			if col >= len(cells) {
				continue
			}
			value := cells[col]
			if strings.TrimSpace(value) == "" {
				continue
			}
			row[headers[pos]] = value
		}
		if len(row) == 0 {
			continue
		}
		out = append(out, row)
	}

	return &Table{Headers: headers, Rows: out}, nil
}
