package fetcher

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // 0 = sniff from the header line (comma or semicolon)
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV parses a CSV stream and returns the header row plus all data rows.
// Telematics exports alternate between comma and semicolon delimiters, so by
// default the delimiter is sniffed from the header line.
func ReadCSV(r io.Reader, opts CSVOptions) (header []string, rows [][]string, err error) {
	br := bufio.NewReader(r)

	delim := opts.Delimiter
	if delim == 0 {
		line, peekErr := br.Peek(4096)
		if peekErr != nil && peekErr != io.EOF && peekErr != bufio.ErrBufferFull {
			return nil, nil, eris.Wrap(peekErr, "csv: peek header")
		}
		delim = sniffDelimiter(string(line))
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	first := true
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return header, rows, eris.Wrap(readErr, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if first {
			first = false
			header = record
			continue
		}
		rows = append(rows, record)
	}

	return header, rows, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string, opts CSVOptions) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, opts)
}

// sniffDelimiter picks semicolon over comma when the first line contains more
// semicolons than commas. Comma wins ties.
func sniffDelimiter(headerLine string) rune {
	if idx := strings.IndexByte(headerLine, '\n'); idx >= 0 {
		headerLine = headerLine[:idx]
	}
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}
