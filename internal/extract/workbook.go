package extract

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/traxovo/attendance-cli/internal/fetcher"
	"github.com/traxovo/attendance-cli/internal/identity"
	"github.com/traxovo/attendance-cli/internal/model"
)

// Ranked candidate sheet names per logical table. Case-sensitive exact match,
// first hit wins.
var (
	assetListSheets    = []string{"Asset List", "Assets", "Asset_List", "Equipment List"}
	driversSheets      = []string{"Drivers", "Driver List", "Drivers Sheet", "Driver Roster"}
	jobsSheets         = []string{"Jobs", "Job Sites", "Jobs Sheet", "Job List"}
	startTimeJobSheets = []string{"Start Time & Job", "Start Time and Job", "StartTime&Job", "Start Times"}
)

// Ranked candidate column names per logical field.
var (
	driverCols    = []string{"driver", "driver_name", "employee", "employee_name", "operator", "name"}
	assetCols     = []string{"equip_#", "equip_id", "equipment_id", "equipment", "asset_id", "asset"}
	jobCols       = []string{"job_site", "job", "job_name", "site", "project", "location"}
	startTimeCols = []string{"start_time", "scheduled_start", "start", "shift_start"}
	endTimeCols   = []string{"end_time", "scheduled_end", "end", "shift_end"}
)

// ExtractWorkbook runs the equipment-billing pass: the Asset List sheet is the
// sole ground-truth writer of asset assignments and the sole gate for final
// report inclusion; the Drivers, Jobs, and derived Start Time & Job sheets
// only enrich. Sheets are processed primary-first so the derived sheet can
// never overwrite a primary value. Returns per-source merge counts. The only
// error is a missing or unreadable workbook, which aborts the run.
func ExtractWorkbook(path string, ledger *identity.Ledger) (map[model.Source]int, error) {
	wb, err := fetcher.OpenWorkbook(path)
	if err != nil {
		return nil, eris.Wrap(err, "extract: equipment billing workbook")
	}

	log := zap.L().With(zap.String("workbook", path))
	counts := make(map[model.Source]int)

	type sheetPass struct {
		source     model.Source
		candidates []string
		merge      func(colIdx map[string]int, header []string, rows [][]string) int
	}

	passes := []sheetPass{
		{model.SourceAssetList, assetListSheets, func(colIdx map[string]int, header []string, rows [][]string) int {
			return mergeAssetList(ledger, colIdx, header, rows, log)
		}},
		{model.SourceDriversSheet, driversSheets, func(colIdx map[string]int, _ []string, rows [][]string) int {
			return mergeDriversSheet(ledger, colIdx, rows)
		}},
		{model.SourceJobsSheet, jobsSheets, func(colIdx map[string]int, _ []string, rows [][]string) int {
			return mergeJobsSheet(ledger, colIdx, rows)
		}},
		{model.SourceStartTimeJob, startTimeJobSheets, func(colIdx map[string]int, _ []string, rows [][]string) int {
			return mergeStartTimeJob(ledger, colIdx, rows)
		}},
	}

	for _, pass := range passes {
		table, ok := wb.Sheet(pass.candidates...)
		if !ok || len(table) == 0 {
			log.Warn("extract: sheet not found, skipping",
				zap.String("source", pass.source.Tag()),
				zap.Strings("candidates", pass.candidates),
			)
			continue
		}

		header := table[0]
		rows := table[1:]
		merged := pass.merge(MapColumns(header), header, rows)
		counts[pass.source] = merged

		log.Info("extract: sheet merged",
			zap.String("source", pass.source.Tag()),
			zap.Int("rows", len(rows)),
			zap.Int("merged", merged),
		)
	}

	return counts, nil
}

func mergeAssetList(ledger *identity.Ledger, colIdx map[string]int, header []string, rows [][]string, log *zap.Logger) int {
	driverIdx, ok := ResolveColumn(colIdx, driverCols...)
	if !ok {
		log.Warn("extract: asset list has no driver column")
		return 0
	}

	assetIdx, assetOK := ResolveColumn(colIdx, assetCols...)
	if !assetOK {
		// Heuristic fallback applies only to the billing file's asset column.
		assetIdx, assetOK = FindAssetColumn(header, rows)
		if assetOK {
			log.Info("extract: asset column resolved by pattern heuristic",
				zap.String("column", header[assetIdx]))
		} else {
			log.Warn("extract: asset list has no recognizable asset column")
		}
	}
	jobIdx, jobOK := ResolveColumn(colIdx, jobCols...)

	var merged int
	for _, row := range rows {
		name := Field(row, driverIdx)
		if IsSentinel(name) {
			continue
		}
		rec, ok := ledger.Upsert(name)
		if !ok {
			continue
		}

		payload := map[string]string{"driver": name}
		if assetOK {
			if asset := Field(row, assetIdx); !IsSentinel(asset) {
				rec.SetAssetID(strings.ToUpper(asset))
				payload["asset_id"] = strings.ToUpper(asset)
			}
		}
		if jobOK {
			if job := Field(row, jobIdx); !IsSentinel(job) {
				rec.SetJobSite(job)
				payload["job_site"] = job
			}
		}

		rec.AddSource(model.SourceAssetList, payload)
		merged++
	}
	return merged
}

func mergeDriversSheet(ledger *identity.Ledger, colIdx map[string]int, rows [][]string) int {
	driverIdx, ok := ResolveColumn(colIdx, driverCols...)
	if !ok {
		return 0
	}

	var merged int
	for _, row := range rows {
		name := Field(row, driverIdx)
		if IsSentinel(name) {
			continue
		}
		rec, ok := ledger.Upsert(name)
		if !ok {
			continue
		}
		rec.AddSource(model.SourceDriversSheet, map[string]string{"driver": name})
		merged++
	}
	return merged
}

func mergeJobsSheet(ledger *identity.Ledger, colIdx map[string]int, rows [][]string) int {
	driverIdx, ok := ResolveColumn(colIdx, driverCols...)
	if !ok {
		return 0
	}
	jobIdx, jobOK := ResolveColumn(colIdx, jobCols...)

	var merged int
	for _, row := range rows {
		name := Field(row, driverIdx)
		if IsSentinel(name) {
			continue
		}
		rec, ok := ledger.Upsert(name)
		if !ok {
			continue
		}

		payload := map[string]string{"driver": name}
		if jobOK {
			if job := Field(row, jobIdx); !IsSentinel(job) {
				rec.SetJobSite(job)
				payload["job_site"] = job
			}
		}
		rec.AddSource(model.SourceJobsSheet, payload)
		merged++
	}
	return merged
}

// mergeStartTimeJob handles the derived sheet. Job sites only fill gaps (the
// primary sheets ran first) and the scheduled window is carried as raw payload
// for the classifier to parse.
func mergeStartTimeJob(ledger *identity.Ledger, colIdx map[string]int, rows [][]string) int {
	driverIdx, ok := ResolveColumn(colIdx, driverCols...)
	if !ok {
		return 0
	}
	startIdx, startOK := ResolveColumn(colIdx, startTimeCols...)
	endIdx, endOK := ResolveColumn(colIdx, endTimeCols...)
	jobIdx, jobOK := ResolveColumn(colIdx, jobCols...)

	var merged int
	for _, row := range rows {
		name := Field(row, driverIdx)
		if IsSentinel(name) {
			continue
		}
		rec, ok := ledger.Upsert(name)
		if !ok {
			continue
		}

		payload := map[string]string{"driver": name}
		if startOK {
			if v := Field(row, startIdx); !IsSentinel(v) {
				payload["start_time"] = v
			}
		}
		if endOK {
			if v := Field(row, endIdx); !IsSentinel(v) {
				payload["end_time"] = v
			}
		}
		if jobOK {
			if job := Field(row, jobIdx); !IsSentinel(job) {
				rec.SetJobSite(job)
				payload["job_site"] = job
			}
		}
		rec.AddSource(model.SourceStartTimeJob, payload)
		merged++
	}
	return merged
}
