package model

import "time"

// ReportMetadata describes the source-of-truth hierarchy baked into a report
// so a reviewer can see how the verdicts were reached without reading code.
type ReportMetadata struct {
	SourceHierarchy   []string `json:"source_hierarchy"`
	DerivedSources    []string `json:"derived_sources"`
	LateThresholdMin  int      `json:"late_threshold_minutes"`
	EarlyThresholdMin int      `json:"early_end_threshold_minutes"`
	DefaultShift      string   `json:"default_shift"`
}

// Report is the structured output of one pipeline run. External collaborators
// serialize it to JSON or render it into spreadsheets; the pipeline's own
// contract ends here.
type Report struct {
	TargetDate  string          `json:"target_date"`
	GeneratedAt time.Time       `json:"generated_at"`
	Drivers     []*DriverRecord `json:"drivers"`
	Unmatched   []*DriverRecord `json:"unmatched_drivers"`
	Stats       RunStats        `json:"stats"`
	Metadata    ReportMetadata  `json:"metadata"`
}

// RunStatus tracks a run row in the history store.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Artifact is an emitted file plus its content checksum.
type Artifact struct {
	Kind     string `json:"kind"` // "report" or "manifest"
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Run is one recorded pipeline execution.
type Run struct {
	ID         string     `json:"id"`
	TargetDate string     `json:"target_date"`
	Status     RunStatus  `json:"status"`
	Stats      *RunStats  `json:"stats,omitempty"`
	Artifacts  []Artifact `json:"artifacts,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
