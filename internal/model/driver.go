package model

import "time"

// Status is the terminal attendance classification for a driver.
type Status string

const (
	StatusOnTime     Status = "On Time"
	StatusLate       Status = "Late"
	StatusEarlyEnd   Status = "Early End"
	StatusNotOnJob   Status = "Not On Job"
	StatusUnverified Status = "Unverified"
)

// AllStatuses returns every status in report ordering.
func AllStatuses() []Status {
	return []Status{StatusOnTime, StatusLate, StatusEarlyEnd, StatusNotOnJob, StatusUnverified}
}

// VerificationLevel is a confidence tier derived from how many sources
// corroborate a driver record.
type VerificationLevel string

const (
	VerificationUnverified VerificationLevel = "UNVERIFIED"
	VerificationLow        VerificationLevel = "LOW"
	VerificationMedium     VerificationLevel = "MEDIUM"
	VerificationHigh       VerificationLevel = "HIGH"
)

// VerificationFromSources maps a source count to a verification level.
// The derived Start Time & Job source counts toward the tally.
func VerificationFromSources(n int) VerificationLevel {
	switch {
	case n <= 0:
		return VerificationUnverified
	case n == 1:
		return VerificationLow
	case n == 2:
		return VerificationMedium
	default:
		return VerificationHigh
	}
}

// TimeCheck records one threshold comparison made by the classifier.
type TimeCheck struct {
	Name         string     `json:"name"`
	Scheduled    time.Time  `json:"scheduled"`
	Observed     *time.Time `json:"observed,omitempty"`
	DeltaMinutes int        `json:"delta_minutes"`
	Triggered    bool       `json:"triggered"`
}

// LocationCheck records the job-site match performed by the classifier.
type LocationCheck struct {
	JobSite   string   `json:"job_site"`
	Locations []string `json:"locations"`
	Performed bool     `json:"performed"`
	Matched   bool     `json:"matched"`
}

// ClassificationDetails is the reasoning trail attached to every classified
// record. Path is ordered, one sentence per decision step.
type ClassificationDetails struct {
	Path           []string        `json:"classification_path"`
	TimeChecks     []TimeCheck     `json:"time_checks,omitempty"`
	LocationChecks []LocationCheck `json:"location_checks,omitempty"`
}

// DriverRecord accumulates everything known about one physically distinct
// driver for a single processing date. Records are created on first encounter,
// enriched additively by each extractor pass, and finalized once by the
// classifier.
type DriverRecord struct {
	DriverName     string `json:"driver_name"`
	NormalizedName string `json:"normalized_name"`

	AssetID string `json:"asset_id,omitempty"`
	JobSite string `json:"job_site,omitempty"`

	KeyOn     *time.Time `json:"key_on_time,omitempty"`
	KeyOff    *time.Time `json:"key_off_time,omitempty"`
	Locations []string   `json:"locations,omitempty"`

	Sources    []Source                     `json:"sources"`
	SourceData map[Source]map[string]string `json:"source_data,omitempty"`

	Status          Status                `json:"status,omitempty"`
	StatusReason    string                `json:"status_reason,omitempty"`
	Verification    VerificationLevel     `json:"verification_level"`
	Details         ClassificationDetails `json:"classification_details"`
	KeyDeltaMinutes int                   `json:"key_delta_minutes"`
	SiteMatch       *bool                 `json:"site_match,omitempty"`
}

// NewDriverRecord creates a record for a driver first seen under displayName.
func NewDriverRecord(displayName, normalized string) *DriverRecord {
	return &DriverRecord{
		DriverName:     displayName,
		NormalizedName: normalized,
		SourceData:     make(map[Source]map[string]string),
		Verification:   VerificationUnverified,
	}
}

// HasSource reports whether src already contributed to the record.
func (r *DriverRecord) HasSource(src Source) bool {
	for _, s := range r.Sources {
		if s == src {
			return true
		}
	}
	return false
}

// AddSource records a source contribution and its raw payload. Re-adding the
// same source is a no-op for the source set; the payload is merged key-wise so
// repeated merges stay idempotent.
func (r *DriverRecord) AddSource(src Source, payload map[string]string) {
	if !r.HasSource(src) {
		r.Sources = append(r.Sources, src)
	}
	if len(payload) > 0 {
		existing := r.SourceData[src]
		if existing == nil {
			existing = make(map[string]string, len(payload))
			r.SourceData[src] = existing
		}
		for k, v := range payload {
			existing[k] = v
		}
	}
	r.Verification = VerificationFromSources(len(r.Sources))
}

// ObserveKeyOn lowers the key-on time to t if t is earlier than anything seen.
func (r *DriverRecord) ObserveKeyOn(t time.Time) {
	if r.KeyOn == nil || t.Before(*r.KeyOn) {
		r.KeyOn = &t
	}
}

// ObserveKeyOff raises the key-off time to t if t is later than anything seen.
func (r *DriverRecord) ObserveKeyOff(t time.Time) {
	if r.KeyOff == nil || t.After(*r.KeyOff) {
		r.KeyOff = &t
	}
}

// AddLocation unions a free-text location string into the record.
func (r *DriverRecord) AddLocation(loc string) {
	if loc == "" {
		return
	}
	for _, l := range r.Locations {
		if l == loc {
			return
		}
	}
	r.Locations = append(r.Locations, loc)
}

// SetAssetID sets the equipment identifier. The Asset List sheet is the sole
// ground-truth writer, so the first non-empty value wins.
func (r *DriverRecord) SetAssetID(id string) {
	if r.AssetID == "" && id != "" {
		r.AssetID = id
	}
}

// SetJobSite assigns a job site. Merges are additive: the first non-empty
// value wins, so the derived Start Time & Job sheet can fill a gap but never
// overwrite a primary source.
func (r *DriverRecord) SetJobSite(site string) {
	if site == "" || r.JobSite != "" {
		return
	}
	r.JobSite = site
}
