// Package extract converts the three heterogeneous source formats into the
// shared driver ledger, tolerating missing and renamed columns.
package extract

import (
	"regexp"
	"strings"
)

// NormalizeHeader lowercases a column header and replaces spaces with
// underscores so ranked candidate lists match across export variants.
func NormalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// MapColumns builds a normalized column name → index map from a header row.
func MapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[NormalizeHeader(col)] = i
	}
	return m
}

// ResolveColumn returns the index of the first candidate present in the
// normalized header map. First match wins; ok is false when no candidate
// matches, which degrades that slice of data rather than failing the run.
func ResolveColumn(colIdx map[string]int, candidates ...string) (idx int, ok bool) {
	for _, name := range candidates {
		if i, found := colIdx[NormalizeHeader(name)]; found {
			return i, true
		}
	}
	return 0, false
}

// Field returns the trimmed value at idx, or empty string when the record is
// short.
func Field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// IsSentinel reports whether a key field holds one of the null placeholders
// that spreadsheet round-trips leave behind.
func IsSentinel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

// assetIDPattern matches equipment identifiers like "EX-210", "T104", "D-12A".
var assetIDPattern = regexp.MustCompile(`^[A-Za-z]{1,5}-?\d{1,6}[A-Za-z0-9-]*$`)

// FindAssetColumn is the heuristic fallback used only for the equipment-billing
// asset column: the first column where the majority of non-empty values look
// like alphanumeric equipment identifiers.
func FindAssetColumn(header []string, rows [][]string) (idx int, ok bool) {
	for col := range header {
		var seen, matched int
		for _, row := range rows {
			v := Field(row, col)
			if IsSentinel(v) {
				continue
			}
			seen++
			if assetIDPattern.MatchString(v) {
				matched++
			}
		}
		if seen > 0 && matched*2 > seen {
			return col, true
		}
	}
	return 0, false
}
