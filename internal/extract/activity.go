package extract

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/traxovo/attendance-cli/internal/fetcher"
	"github.com/traxovo/attendance-cli/internal/identity"
	"github.com/traxovo/attendance-cli/internal/model"
)

var (
	adStartCols  = []string{"start_time", "activity_start", "time_in", "start"}
	adEndCols    = []string{"end_time", "activity_end", "time_out", "end"}
	adLocInCols  = []string{"location_in", "start_location", "from_location", "from"}
	adLocOutCols = []string{"location_out", "end_location", "to_location", "to"}
)

// ExtractActivityDetail runs the daily activity-detail CSV pass. Each row is
// one activity span with start/end timestamps and in/out locations; rows are
// grouped by (normalized driver, asset) and reduced the same way as driving
// history: earliest start, latest end, union of locations.
func ExtractActivityDetail(path string, ledger *identity.Ledger) (int, error) {
	header, rows, err := fetcher.ReadCSVFile(path, fetcher.CSVOptions{TrimSpace: true, LazyQuotes: true})
	if err != nil {
		return 0, eris.Wrap(err, "extract: activity detail")
	}

	log := zap.L().With(zap.String("file", path))
	colIdx := MapColumns(header)

	driverIdx, ok := ResolveColumn(colIdx, driverCols...)
	if !ok {
		log.Warn("extract: activity detail has no driver column")
		return 0, nil
	}
	assetIdx, assetOK := ResolveColumn(colIdx, dhAssetCols...)
	startIdx, startOK := ResolveColumn(colIdx, adStartCols...)
	endIdx, endOK := ResolveColumn(colIdx, adEndCols...)
	locInIdx, locInOK := ResolveColumn(colIdx, adLocInCols...)
	locOutIdx, locOutOK := ResolveColumn(colIdx, adLocOutCols...)

	groups := make(map[string]*telemetryGroup)
	order := make([]string, 0)
	var badTimestamps int

	for _, row := range rows {
		name := Field(row, driverIdx)
		if IsSentinel(name) {
			continue
		}
		normalized := identity.Normalize(name)
		if normalized == "" {
			continue
		}

		var asset string
		if assetOK {
			asset = strings.ToUpper(Field(row, assetIdx))
		}

		key := normalized + "|" + asset
		g, found := groups[key]
		if !found {
			g = &telemetryGroup{rawName: name, assetID: asset}
			groups[key] = g
			order = append(order, key)
		}
		g.events++

		if startOK {
			if ts, parsed := ParseTimestamp(Field(row, startIdx)); parsed {
				g.observeOn(ts)
			} else if !IsSentinel(Field(row, startIdx)) {
				badTimestamps++
			}
		}
		if endOK {
			if ts, parsed := ParseTimestamp(Field(row, endIdx)); parsed {
				g.observeOff(ts)
			} else if !IsSentinel(Field(row, endIdx)) {
				badTimestamps++
			}
		}
		if locInOK {
			g.addLocation(Field(row, locInIdx))
		}
		if locOutOK {
			g.addLocation(Field(row, locOutIdx))
		}
	}

	if badTimestamps > 0 {
		log.Warn("extract: unparseable timestamps skipped", zap.Int("count", badTimestamps))
	}

	for _, key := range order {
		g := groups[key]
		rec, ok := ledger.Upsert(g.rawName)
		if !ok {
			continue
		}
		if g.firstOn != nil {
			rec.ObserveKeyOn(*g.firstOn)
		}
		if g.lastOff != nil {
			rec.ObserveKeyOff(*g.lastOff)
		}
		for _, loc := range g.locations {
			rec.AddLocation(loc)
		}

		payload := map[string]string{
			"driver":     g.rawName,
			"activities": strconv.Itoa(g.events),
		}
		if g.assetID != "" {
			payload["asset_id"] = g.assetID
		}
		rec.AddSource(model.SourceActivityDetail, payload)
	}

	log.Info("extract: activity detail merged",
		zap.Int("rows", len(rows)),
		zap.Int("driver_groups", len(groups)),
	)
	return len(groups), nil
}
