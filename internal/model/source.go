package model

// Source identifies a data source that can contribute to a driver record.
// The string value is the display tag used in reports and manifests.
type Source string

const (
	SourceAssetList      Source = "Asset List"
	SourceDriversSheet   Source = "Drivers Sheet"
	SourceJobsSheet      Source = "Jobs Sheet"
	SourceStartTimeJob   Source = "Start Time & Job [DERIVED]"
	SourceDrivingHistory Source = "Driving History"
	SourceActivityDetail Source = "Activity Detail"
)

// AllSources returns every source in hierarchy order, most authoritative first.
func AllSources() []Source {
	return []Source{
		SourceAssetList,
		SourceDriversSheet,
		SourceJobsSheet,
		SourceStartTimeJob,
		SourceDrivingHistory,
		SourceActivityDetail,
	}
}

// Derived reports whether the source is computed from other sheets in the same
// workbook rather than observed independently. Derived sources may fill gaps
// but never overwrite data written by a primary source.
func (s Source) Derived() bool {
	return s == SourceStartTimeJob
}

// Tag returns the display tag for the source.
func (s Source) Tag() string {
	return string(s)
}
