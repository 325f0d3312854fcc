package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/traxovo/attendance-cli/internal/config"
	"github.com/traxovo/attendance-cli/internal/extract"
	"github.com/traxovo/attendance-cli/internal/fetcher"
	"github.com/traxovo/attendance-cli/internal/identity"
	"github.com/traxovo/attendance-cli/internal/model"
	"github.com/traxovo/attendance-cli/internal/store"
)

// Pipeline runs the reconciliation steps in fixed order for one target date.
// Each run constructs a fresh ledger; no state crosses run boundaries.
type Pipeline struct {
	cfg    *config.Config
	shifts *config.ShiftBook
	store  store.Store
	ftp    *fetcher.FTPSync // nil when no drop zone is configured
}

// New creates a Pipeline. ftp may be nil to disable drop-zone sync; st may be
// nil to skip run-history recording.
func New(cfg *config.Config, shifts *config.ShiftBook, st store.Store, ftp *fetcher.FTPSync) *Pipeline {
	return &Pipeline{cfg: cfg, shifts: shifts, store: st, ftp: ftp}
}

// RunResult summarizes one completed run for the CLI.
type RunResult struct {
	RunID      string
	TargetDate string
	Report     *model.Report
	Artifacts  []model.Artifact
	Stats      model.RunStats
}

// Run executes the pipeline for one target date. The only fatal condition is
// an unreadable equipment-billing workbook; every other degraded source flows
// through as fewer merged sources and lower verification levels.
func (p *Pipeline) Run(ctx context.Context, targetDate time.Time) (*RunResult, error) {
	dateStr := targetDate.Format("2006-01-02")
	stamp := targetDate.Format("20060102")
	log := zap.L().With(zap.String("target_date", dateStr))
	start := time.Now()
	log.Info("pipeline: starting run")

	var runID string
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, dateStr)
		if err != nil {
			log.Warn("pipeline: failed to create run record", zap.Error(err))
		} else {
			runID = run.ID
		}
	}

	fail := func(err error) (*RunResult, error) {
		if p.store != nil && runID != "" {
			if storeErr := p.store.FailRun(ctx, runID, err); storeErr != nil {
				log.Warn("pipeline: failed to record run failure", zap.Error(storeErr))
			}
		}
		return nil, err
	}

	// Optional drop-zone sync ahead of extraction. Failure here only means
	// the local search directories are all we have.
	syncDir := p.syncDropZone(ctx, stamp, log)

	// Step 1: equipment-billing workbook. Sole fatal failure of the run.
	ledger := identity.NewLedger()
	stats := model.NewRunStats()

	workbookCounts, err := extract.ExtractWorkbook(p.cfg.Sources.WorkbookPath, ledger)
	if err != nil {
		log.Error("pipeline: workbook extraction failed, aborting run", zap.Error(err))
		return fail(err)
	}
	for src, n := range workbookCounts {
		stats.SourceRecordCounts[src] = n
	}

	// Step 2: driving history, non-fatal when absent.
	dhDirs := appendDir(p.cfg.Sources.DrivingHistoryDirs, syncDir)
	canonicals := []string{
		fmt.Sprintf("DrivingHistory_%s.csv", stamp),
		fmt.Sprintf("driving_history_%s.csv", stamp),
	}
	if path, ok := fetcher.LocateDated(dhDirs, canonicals, "driving history", stamp); ok {
		n, dhErr := extract.ExtractDrivingHistory(path, ledger)
		if dhErr != nil {
			log.Warn("pipeline: driving history extraction failed, continuing without it", zap.Error(dhErr))
		} else {
			stats.SourceRecordCounts[model.SourceDrivingHistory] = n
		}
	} else {
		log.Info("pipeline: no driving history file for date")
	}

	// Step 3: activity detail, non-fatal when absent.
	adDirs := appendDir(p.cfg.Sources.ActivityDetailDirs, syncDir)
	canonicals = []string{
		fmt.Sprintf("ActivityDetail_%s.csv", stamp),
		fmt.Sprintf("activity_detail_%s.csv", stamp),
	}
	if path, ok := fetcher.LocateDated(adDirs, canonicals, "activity detail", stamp); ok {
		n, adErr := extract.ExtractActivityDetail(path, ledger)
		if adErr != nil {
			log.Warn("pipeline: activity detail extraction failed, continuing without it", zap.Error(adErr))
		} else {
			stats.SourceRecordCounts[model.SourceActivityDetail] = n
		}
	} else {
		log.Info("pipeline: no activity detail file for date")
	}

	// Step 4: Asset List gate, then classification of the matched set.
	var matched, unmatched []*model.DriverRecord
	for _, rec := range ledger.Records() {
		if rec.HasSource(model.SourceAssetList) {
			matched = append(matched, rec)
		} else {
			unmatched = append(unmatched, rec)
		}
	}

	classifier := NewClassifier(targetDate, p.shifts, p.cfg.Schedule)
	for _, rec := range matched {
		classifier.Classify(rec)
		stats.ClassificationCounts[rec.Status]++
	}
	for _, rec := range unmatched {
		MarkUnverified(rec)
		stats.ExclusionReasons[rec.StatusReason]++
	}

	stats.TotalDriversParsed = ledger.Len()
	stats.TotalMatched = len(matched)
	stats.TotalExcluded = len(unmatched)

	// Step 5: emit artifacts.
	report := BuildReport(targetDate, matched, unmatched, stats, p.cfg.Schedule, time.Now())

	if err := os.MkdirAll(p.cfg.Sources.ReportDir, 0o755); err != nil {
		return fail(eris.Wrapf(err, "pipeline: create report dir %s", p.cfg.Sources.ReportDir))
	}

	reportPath := filepath.Join(p.cfg.Sources.ReportDir, fmt.Sprintf("attendance_report_%s.json", stamp))
	reportSum, err := WriteReportJSON(report, reportPath)
	if err != nil {
		return fail(err)
	}

	manifestPath := filepath.Join(p.cfg.Sources.ReportDir, fmt.Sprintf("attendance_manifest_%s.txt", stamp))
	manifestSum, err := WriteManifest(report, manifestPath)
	if err != nil {
		return fail(err)
	}

	artifacts := []model.Artifact{
		{Kind: "report", Path: reportPath, Checksum: reportSum},
		{Kind: "manifest", Path: manifestPath, Checksum: manifestSum},
	}

	if p.store != nil && runID != "" {
		if err := p.store.CompleteRun(ctx, runID, stats, artifacts); err != nil {
			log.Warn("pipeline: failed to record run completion", zap.Error(err))
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("drivers_parsed", stats.TotalDriversParsed),
		zap.Int("matched", stats.TotalMatched),
		zap.Int("excluded", stats.TotalExcluded),
		zap.String("report", reportPath),
		zap.String("manifest", manifestPath),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &RunResult{
		RunID:      runID,
		TargetDate: dateStr,
		Report:     report,
		Artifacts:  artifacts,
		Stats:      stats,
	}, nil
}

// syncDropZone pulls date-stamped exports from the FTP drop zone into the
// first driving-history directory. Returns the sync directory so the locate
// step can include it, or empty when sync is disabled or failed.
func (p *Pipeline) syncDropZone(ctx context.Context, stamp string, log *zap.Logger) string {
	if p.ftp == nil || p.cfg.FTP.DropURL == "" || len(p.cfg.Sources.DrivingHistoryDirs) == 0 {
		return ""
	}

	dest := p.cfg.Sources.DrivingHistoryDirs[0]
	if err := os.MkdirAll(dest, 0o755); err != nil {
		log.Warn("pipeline: cannot create sync dir", zap.String("dir", dest), zap.Error(err))
		return ""
	}

	pulled, err := p.ftp.PullDated(ctx, p.cfg.FTP.DropURL, stamp, dest)
	if err != nil {
		log.Warn("pipeline: drop-zone sync failed, using local files only", zap.Error(err))
		return ""
	}
	if len(pulled) == 0 {
		log.Info("pipeline: no exports in drop zone for date")
	}
	return dest
}

func appendDir(dirs []string, extra string) []string {
	if extra == "" {
		return dirs
	}
	for _, d := range dirs {
		if d == extra {
			return dirs
		}
	}
	out := make([]string, 0, len(dirs)+1)
	out = append(out, dirs...)
	return append(out, extra)
}
