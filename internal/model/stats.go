package model

// RunStats aggregates counters for one pipeline run. Computed once by the
// orchestrator after classification, read-only thereafter.
type RunStats struct {
	TotalDriversParsed   int            `json:"total_drivers_parsed"`
	TotalMatched         int            `json:"total_matched_to_asset_list"`
	TotalExcluded        int            `json:"total_excluded"`
	ExclusionReasons     map[string]int `json:"exclusion_reasons"`
	ClassificationCounts map[Status]int `json:"classification_counts"`
	SourceRecordCounts   map[Source]int `json:"source_record_counts"`
}

// NewRunStats returns a RunStats with all maps initialized.
func NewRunStats() RunStats {
	return RunStats{
		ExclusionReasons:     make(map[string]int),
		ClassificationCounts: make(map[Status]int),
		SourceRecordCounts:   make(map[Source]int),
	}
}
