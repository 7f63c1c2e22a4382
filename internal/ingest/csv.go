// Package ingest reads raw CSV transaction exports and feeds them through
// the classifier. It tolerates the quirks of real exports: UTF-8 BOM, CP949
// encoding, semicolon or tab delimiters, and ragged rows.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"github.com/yeoyun/SpendingAnalysis/internal/classify"
)

// sniffDelimiter inspects the header line and picks the delimiter with the
// most occurrences. Comma wins ties, matching what exports actually use.
func sniffDelimiter(line string) rune {
	best := ','
	bestCount := strings.Count(line, ",")
	for _, cand := range []rune{';', '\t'} {
		if c := strings.Count(line, string(cand)); c > bestCount {
			best = cand
			bestCount = c
		}
	}
	return best
}

// decodeInput strips a UTF-8 BOM and, when the input is not valid UTF-8,
// retries it as CP949. Korean bank exports ship in either encoding.
func decodeInput(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// ReadTable parses a CSV stream into a header and data rows. The first line
// determines the delimiter.
func ReadTable(r io.Reader) (header []string, rows [][]string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	data = decodeInput(data)

	firstLine, _, _ := strings.Cut(string(data), "\n")
	delim := sniffDelimiter(firstLine)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1 // ragged rows handled by the classifier
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv input")
	}
	return records[0], records[1:], nil
}

// Load reads a CSV export and returns the classified result.
func Load(r io.Reader) (*classify.Result, error) {
	header, rows, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return classify.Classify(header, rows)
}
