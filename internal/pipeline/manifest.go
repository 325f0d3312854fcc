package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/traxovo/attendance-cli/internal/model"
)

// FormatManifest renders the plain-text trace manifest: a human audit
// artifact summarizing the source hierarchy, per-source record counts,
// processing statistics, exclusions, and classification counts. No machine
// consumer depends on this layout.
func FormatManifest(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DRIVER ATTENDANCE TRACE MANIFEST\n")
	fmt.Fprintf(&b, "Target date:  %s\n", report.TargetDate)
	fmt.Fprintf(&b, "Generated at: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("SOURCE HIERARCHY (most authoritative first)\n")
	for i, tag := range report.Metadata.SourceHierarchy {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, tag)
	}
	if len(report.Metadata.DerivedSources) > 0 {
		fmt.Fprintf(&b, "  Derived (non-authoritative): %s\n", strings.Join(report.Metadata.DerivedSources, ", "))
	}
	b.WriteString("\n")

	b.WriteString("PER-SOURCE RECORD COUNTS\n")
	for _, src := range model.AllSources() {
		if n, ok := report.Stats.SourceRecordCounts[src]; ok {
			fmt.Fprintf(&b, "  %-28s %d\n", src.Tag(), n)
		}
	}
	b.WriteString("\n")

	b.WriteString("PROCESSING STATISTICS\n")
	fmt.Fprintf(&b, "  Drivers parsed:            %d\n", report.Stats.TotalDriversParsed)
	fmt.Fprintf(&b, "  Matched to Asset List:     %d\n", report.Stats.TotalMatched)
	fmt.Fprintf(&b, "  Excluded:                  %d\n", report.Stats.TotalExcluded)
	b.WriteString("\n")

	if len(report.Stats.ExclusionReasons) > 0 {
		b.WriteString("EXCLUSION REASONS\n")
		reasons := make([]string, 0, len(report.Stats.ExclusionReasons))
		for reason := range report.Stats.ExclusionReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "  %-40s %d\n", reason, report.Stats.ExclusionReasons[reason])
		}
		b.WriteString("\n")
	}

	b.WriteString("CLASSIFICATION COUNTS\n")
	for _, status := range model.AllStatuses() {
		if n, ok := report.Stats.ClassificationCounts[status]; ok {
			fmt.Fprintf(&b, "  %-12s %d\n", status, n)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Thresholds: late after %d min, early end before %d min, default shift %s\n",
		report.Metadata.LateThresholdMin, report.Metadata.EarlyThresholdMin, report.Metadata.DefaultShift)

	return b.String()
}

// WriteManifest writes the trace manifest to path and returns its checksum.
func WriteManifest(report *model.Report, path string) (checksum string, err error) {
	text := FormatManifest(report)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", eris.Wrapf(err, "manifest: write %s", path)
	}
	return Checksum([]byte(text)), nil
}
