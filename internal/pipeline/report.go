package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/traxovo/attendance-cli/internal/config"
	"github.com/traxovo/attendance-cli/internal/model"
)

// BuildReport assembles the structured report object: matched drivers,
// separately listed unmatched drivers, run statistics, and fixed metadata
// describing the source hierarchy. now is used for the report timestamp only,
// never for classification.
func BuildReport(targetDate time.Time, matched, unmatched []*model.DriverRecord, stats model.RunStats, schedule config.ScheduleConfig, now time.Time) *model.Report {
	hierarchy := make([]string, 0, len(model.AllSources()))
	var derived []string
	for _, src := range model.AllSources() {
		hierarchy = append(hierarchy, src.Tag())
		if src.Derived() {
			derived = append(derived, src.Tag())
		}
	}

	return &model.Report{
		TargetDate:  targetDate.Format("2006-01-02"),
		GeneratedAt: now,
		Drivers:     matched,
		Unmatched:   unmatched,
		Stats:       stats,
		Metadata: model.ReportMetadata{
			SourceHierarchy:   hierarchy,
			DerivedSources:    derived,
			LateThresholdMin:  schedule.LateThresholdMin,
			EarlyThresholdMin: schedule.EarlyThresholdMin,
			DefaultShift:      schedule.DefaultStart + "-" + schedule.DefaultEnd,
		},
	}
}

// WriteReportJSON serializes the report to path and returns the content
// checksum used by downstream renderers for integrity signaling.
func WriteReportJSON(report *model.Report, path string) (checksum string, err error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "report: marshal json")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "report: write %s", path)
	}
	return Checksum(data), nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
