package document

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/wildsync/constants"
)

// Table is a rectangular sheet: one header row and zero or more data rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Columns) == 0 || len(t.Rows) == 0
}

// Cell returns the value at row/col, or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Records returns up to limit rows keyed by column name.
func (t *Table) Records(limit int) []map[string]string {
	if t == nil {
		return nil
	}
	n := len(t.Rows)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[c] = t.Cell(i, j)
		}
		out = append(out, rec)
	}
	return out
}

// ReadTable parses csv, xlsx or xls bytes into a Table.
func ReadTable(ext string, data []byte) (*Table, error) {
	switch constants.NormalizeExt(ext) {
	case "csv":
		return readCSV(data)
	case "xlsx":
		return readXLSX(data)
	case "xls":
		return readXLS(data)
	default:
		return nil, fmt.Errorf("%w: %q is not a tabular format", errUnsupportedExt, ext)
	}
}

var errUnsupportedExt = errors.New("unsupported extension")

func readCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return fromRows(rows), nil
}

func readXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	// Raw values keep percent and rounded number formats out of the cells.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows), nil
}

func readXLS(data []byte) (t *Table, err error) {
	// The xls decoder panics on some malformed workbooks.
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("open xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return &Table{}, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return &Table{}, nil
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return fromRows(rows), nil
}

// fromRows treats the first non-blank row as the header.
func fromRows(rows [][]string) *Table {
	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return &Table{}
	}
	t := &Table{Columns: make([]string, len(rows[0]))}
	for i, c := range rows[0] {
		t.Columns[i] = strings.TrimSpace(c)
	}
	for _, r := range rows[1:] {
		if blankRow(r) {
			continue
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
