// Package fetcher reads the loosely-structured source files the pipeline
// ingests: the equipment-billing XLSX workbook, date-stamped telematics CSVs,
// and optional FTP drop-zone exports.
package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Workbook wraps an open XLSX file and resolves logical tables by ranked
// candidate sheet names.
type Workbook struct {
	file *xlsx.File
	path string
}

// OpenWorkbook opens an XLSX workbook. A missing or unreadable file is the
// pipeline's sole fatal error, so callers must propagate this failure.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open workbook %s", path)
	}
	return &Workbook{file: f, path: path}, nil
}

// Path returns the workbook's filesystem path.
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames lists the workbook's sheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.file.Sheets))
	for _, s := range w.file.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet locates a logical table by trying each candidate sheet name in order
// (case-sensitive exact match, first match wins) and returns its rows as
// string slices. Sheet absence is non-fatal: ok is false and the caller skips
// that table.
func (w *Workbook) Sheet(candidates ...string) (rows [][]string, ok bool) {
	for _, name := range candidates {
		sheet, found := w.file.Sheet[name]
		if !found {
			continue
		}
		out := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			out = append(out, rowToStrings(row))
		}
		return out, true
	}
	return nil, false
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
