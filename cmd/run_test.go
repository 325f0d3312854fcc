package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traxovo/attendance-cli/internal/model"
	"github.com/traxovo/attendance-cli/internal/pipeline"
)

func TestParseDates(t *testing.T) {
	dates, err := parseDates([]string{"2025-05-01", "2025-05-02"})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local), dates[0])
	assert.Equal(t, time.Date(2025, 5, 2, 0, 0, 0, 0, time.Local), dates[1])
}

func TestParseDates_Invalid(t *testing.T) {
	for _, arg := range []string{"05/01/2025", "2025-13-01", "yesterday", ""} {
		_, err := parseDates([]string{arg})
		require.Error(t, err, arg)
		assert.Contains(t, err.Error(), "invalid date")
	}

	// One bad date rejects the whole invocation.
	_, err := parseDates([]string{"2025-05-01", "bogus"})
	assert.Error(t, err)
}

func summaryResult(parsed, matched, excluded int) *pipeline.RunResult {
	stats := model.NewRunStats()
	stats.TotalDriversParsed = parsed
	stats.TotalMatched = matched
	stats.TotalExcluded = excluded
	stats.ClassificationCounts[model.StatusOnTime] = matched
	return &pipeline.RunResult{
		Stats: stats,
		Artifacts: []model.Artifact{
			{Kind: "report", Path: "/tmp/r.json", Checksum: "0123456789abcdef0123"},
		},
	}
}

func TestPrintRunSummary_SortedByDate(t *testing.T) {
	var buf bytes.Buffer
	printRunSummary(&buf, map[string]*pipeline.RunResult{
		"2025-05-03": summaryResult(5, 4, 1),
		"2025-05-01": summaryResult(3, 3, 0),
		"2025-05-02": summaryResult(4, 2, 2),
	}, nil)

	out := buf.String()
	first := strings.Index(out, "2025-05-01")
	second := strings.Index(out, "2025-05-02")
	third := strings.Index(out, "2025-05-03")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.Greater(t, third, second)

	assert.Contains(t, out, "2025-05-02  parsed=4 matched=2 excluded=2")
	assert.Contains(t, out, "On Time      3")
	// Checksums are truncated to twelve hex characters.
	assert.Contains(t, out, "report: /tmp/r.json (sha256 0123456789ab)")
	assert.NotContains(t, out, "FAILED")
}

func TestPrintRunSummary_FailuresListedAfterResults(t *testing.T) {
	var buf bytes.Buffer
	printRunSummary(&buf,
		map[string]*pipeline.RunResult{"2025-05-02": summaryResult(3, 3, 0)},
		map[string]error{"2025-05-01": assert.AnError},
	)

	out := buf.String()
	assert.Contains(t, out, "2025-05-01  FAILED: "+assert.AnError.Error())
	assert.Greater(t, strings.Index(out, "FAILED"), strings.Index(out, "2025-05-02"))
}
