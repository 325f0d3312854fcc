// Package pipeline orchestrates the daily attendance reconciliation run:
// extract, resolve, classify, emit.
package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/traxovo/attendance-cli/internal/config"
	"github.com/traxovo/attendance-cli/internal/extract"
	"github.com/traxovo/attendance-cli/internal/model"
)

// unverifiedReason is the fixed exclusion reason for drivers absent from the
// Asset List.
const unverifiedReason = "Driver not found in Asset List"

// Classifier assigns exactly one terminal status to each driver record, with
// a full reasoning trail. Classification depends only on accumulator state and
// the target date; repeated runs over the same state are identical.
type Classifier struct {
	targetDate time.Time
	shifts     *config.ShiftBook
	lateAfter  time.Duration
	earlyBy    time.Duration
}

// NewClassifier builds a classifier for one target date.
func NewClassifier(targetDate time.Time, shifts *config.ShiftBook, schedule config.ScheduleConfig) *Classifier {
	late := schedule.LateThresholdMin
	if late <= 0 {
		late = 15
	}
	early := schedule.EarlyThresholdMin
	if early <= 0 {
		early = 30
	}
	return &Classifier{
		targetDate: targetDate,
		shifts:     shifts,
		lateAfter:  time.Duration(late) * time.Minute,
		earlyBy:    time.Duration(early) * time.Minute,
	}
}

// Classify finalizes the status fields of a matched driver record. The Asset
// List gate has already run: records reaching here are in the matched set.
func (c *Classifier) Classify(rec *model.DriverRecord) {
	path := &rec.Details.Path

	// No telemetry at all is a terminal verdict on its own.
	if rec.KeyOn == nil && rec.KeyOff == nil {
		rec.Status = model.StatusNotOnJob
		rec.StatusReason = "No telematics data"
		*path = append(*path, "No key-on or key-off telemetry found in any source.")
		return
	}

	schedStart, schedEnd, schedNote := c.resolveSchedule(rec)
	*path = append(*path, schedNote)

	// Late threshold.
	var late bool
	var minutesLate int
	if rec.KeyOn != nil {
		delta := rec.KeyOn.Sub(schedStart)
		rec.KeyDeltaMinutes = int(math.Round(delta.Minutes()))
		late = delta > c.lateAfter
		if late {
			minutesLate = rec.KeyDeltaMinutes
		}
		rec.Details.TimeChecks = append(rec.Details.TimeChecks, model.TimeCheck{
			Name:         "late_threshold",
			Scheduled:    schedStart,
			Observed:     rec.KeyOn,
			DeltaMinutes: rec.KeyDeltaMinutes,
			Triggered:    late,
		})
		*path = append(*path, fmt.Sprintf(
			"Key-on at %s vs scheduled start %s (grace %d min): late check %s.",
			rec.KeyOn.Format("15:04"), schedStart.Format("15:04"),
			int(c.lateAfter.Minutes()), triggeredWord(late)))
	} else {
		*path = append(*path, "No key-on time observed; late check skipped.")
	}

	// Early-end threshold.
	var early bool
	var minutesEarly int
	if rec.KeyOff != nil {
		delta := schedEnd.Sub(*rec.KeyOff)
		early = delta > c.earlyBy
		minutes := int(math.Round(delta.Minutes()))
		if early {
			minutesEarly = minutes
		}
		rec.Details.TimeChecks = append(rec.Details.TimeChecks, model.TimeCheck{
			Name:         "early_end_threshold",
			Scheduled:    schedEnd,
			Observed:     rec.KeyOff,
			DeltaMinutes: minutes,
			Triggered:    early,
		})
		*path = append(*path, fmt.Sprintf(
			"Key-off at %s vs scheduled end %s (allowance %d min): early-end check %s.",
			rec.KeyOff.Format("15:04"), schedEnd.Format("15:04"),
			int(c.earlyBy.Minutes()), triggeredWord(early)))
	} else {
		*path = append(*path, "No key-off time observed; early-end check skipped.")
	}

	// Job-site match. Skipped entirely (indeterminate, not a mismatch) when
	// either side is missing.
	sitePerformed := rec.JobSite != "" && len(rec.Locations) > 0
	var siteMatched bool
	if sitePerformed {
		siteMatched = matchesJobSite(rec.JobSite, rec.Locations)
		rec.SiteMatch = &siteMatched
		rec.Details.LocationChecks = append(rec.Details.LocationChecks, model.LocationCheck{
			JobSite:   rec.JobSite,
			Locations: rec.Locations,
			Performed: true,
			Matched:   siteMatched,
		})
		*path = append(*path, fmt.Sprintf(
			"Job-site check against %q over %d observed locations: %s.",
			rec.JobSite, len(rec.Locations), matchedWord(siteMatched)))
	} else {
		*path = append(*path, "Job-site check skipped: no assigned site or no observed locations.")
	}

	// Final verdict, fixed precedence: site mismatch, then late, then early
	// end, then on time.
	switch {
	case sitePerformed && !siteMatched:
		rec.Status = model.StatusNotOnJob
		rec.StatusReason = "Not at assigned job site"
	case late:
		rec.Status = model.StatusLate
		rec.StatusReason = fmt.Sprintf("%d minutes late", minutesLate)
	case early:
		rec.Status = model.StatusEarlyEnd
		rec.StatusReason = fmt.Sprintf("%d minutes early", minutesEarly)
	default:
		rec.Status = model.StatusOnTime
		rec.StatusReason = "Within scheduled parameters"
	}
	*path = append(*path, fmt.Sprintf("Verdict: %s (%s).", rec.Status, rec.StatusReason))
}

// MarkUnverified finalizes a driver that failed the Asset List gate. The
// verification level is forced to UNVERIFIED regardless of how many secondary
// sources mentioned the driver: without the Asset List nothing corroborates
// the record.
func MarkUnverified(rec *model.DriverRecord) {
	rec.Status = model.StatusUnverified
	rec.StatusReason = unverifiedReason
	rec.Verification = model.VerificationUnverified
	rec.Details.Path = append(rec.Details.Path,
		"Driver not present in the Asset List; record excluded from the matched report.")
}

// resolveSchedule picks the scheduled window for a record: the derived Start
// Time & Job sheet when present and parseable, then a per-site shifts.yaml
// override, then the fleet default.
func (c *Classifier) resolveSchedule(rec *model.DriverRecord) (start, end time.Time, note string) {
	window := c.shifts.Resolve(rec.JobSite)
	start, _ = extract.ParseClock(window.Start, c.targetDate)
	end, _ = extract.ParseClock(window.End, c.targetDate)
	if c.shifts.HasOverride(rec.JobSite) {
		note = fmt.Sprintf("Schedule from site override for %q: %s-%s.", rec.JobSite, window.Start, window.End)
	} else {
		note = fmt.Sprintf("Schedule from fleet default: %s-%s.", window.Start, window.End)
	}

	derived, ok := rec.SourceData[model.SourceStartTimeJob]
	if !ok {
		return start, end, note
	}

	var fromDerived bool
	if raw := derived["start_time"]; raw != "" {
		if t, parsed := extract.ParseClock(raw, c.targetDate); parsed {
			start = t
			fromDerived = true
		}
	}
	if raw := derived["end_time"]; raw != "" {
		if t, parsed := extract.ParseClock(raw, c.targetDate); parsed {
			end = t
			fromDerived = true
		}
	}
	if fromDerived {
		note = fmt.Sprintf("Schedule from Start Time & Job sheet (derived, non-authoritative): %s-%s.",
			start.Format("15:04"), end.Format("15:04"))
	}
	return start, end, note
}

// matchesJobSite succeeds when either string is a case-insensitive substring
// of the other for any observed location. Short or generic site names can
// false-positive; the manifest's reasoning trail keeps such matches auditable.
func matchesJobSite(jobSite string, locations []string) bool {
	site := strings.ToLower(jobSite)
	for _, raw := range locations {
		loc := strings.ToLower(raw)
		if strings.Contains(loc, site) || strings.Contains(site, loc) {
			return true
		}
	}
	return false
}

func triggeredWord(b bool) string {
	if b {
		return "triggered"
	}
	return "passed"
}

func matchedWord(b bool) string {
	if b {
		return "matched"
	}
	return "no match"
}
