package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/traxovo/attendance-cli/internal/fetcher"
	"github.com/traxovo/attendance-cli/internal/identity"
	"github.com/traxovo/attendance-cli/internal/model"
)

var (
	dhAssetCols    = []string{"vehicle", "asset", "asset_id", "unit", "equipment"}
	dhEventCols    = []string{"event", "event_type", "status", "type"}
	dhDatetimeCols = []string{"datetime", "date_time", "timestamp", "event_time", "time", "date"}
	dhLocationCols = []string{"location", "address", "place"}
)

// telemetryGroup accumulates raw telemetry rows for one (driver, asset) pair
// before they are merged into the ledger.
type telemetryGroup struct {
	rawName   string
	assetID   string
	firstOn   *time.Time
	lastOff   *time.Time
	locations []string
	events    int
}

func (g *telemetryGroup) observeOn(t time.Time) {
	if g.firstOn == nil || t.Before(*g.firstOn) {
		g.firstOn = &t
	}
}

func (g *telemetryGroup) observeOff(t time.Time) {
	if g.lastOff == nil || t.After(*g.lastOff) {
		g.lastOff = &t
	}
}

func (g *telemetryGroup) addLocation(loc string) {
	if IsSentinel(loc) {
		return
	}
	for _, l := range g.locations {
		if l == loc {
			return
		}
	}
	g.locations = append(g.locations, loc)
}

// ExtractDrivingHistory runs the daily driving-history CSV pass. Raw rows are
// grouped by (normalized driver, asset) and reduced to earliest key-on, latest
// key-off, and the union of locations before merging into the ledger. Event
// rows are classified on/off by substring match on the event-type column.
// Returns the number of driver groups merged. Errors are read failures only;
// an absent file is handled by the caller and never reaches here.
func ExtractDrivingHistory(path string, ledger *identity.Ledger) (int, error) {
	header, rows, err := fetcher.ReadCSVFile(path, fetcher.CSVOptions{TrimSpace: true, LazyQuotes: true})
	if err != nil {
		return 0, eris.Wrap(err, "extract: driving history")
	}

	log := zap.L().With(zap.String("file", path))
	colIdx := MapColumns(header)

	driverIdx, ok := ResolveColumn(colIdx, driverCols...)
	if !ok {
		log.Warn("extract: driving history has no driver column")
		return 0, nil
	}
	assetIdx, assetOK := ResolveColumn(colIdx, dhAssetCols...)
	eventIdx, eventOK := ResolveColumn(colIdx, dhEventCols...)
	timeIdx, timeOK := ResolveColumn(colIdx, dhDatetimeCols...)
	locIdx, locOK := ResolveColumn(colIdx, dhLocationCols...)

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

		if locOK {
			g.addLocation(Field(row, locIdx))
		}

		if !eventOK || !timeOK {
			continue
		}
		ts, parsed := ParseTimestamp(Field(row, timeIdx))
		if !parsed {
			badTimestamps++
			continue
		}

		switch eventKind(Field(row, eventIdx)) {
		case eventKeyOn:
			g.observeOn(ts)
		case eventKeyOff:
			g.observeOff(ts)
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
			"driver": g.rawName,
			"events": strconv.Itoa(g.events),
		}
		if g.assetID != "" {
			payload["asset_id"] = g.assetID
		}
		rec.AddSource(model.SourceDrivingHistory, payload)
	}

	log.Info("extract: driving history merged",
		zap.Int("rows", len(rows)),
		zap.Int("driver_groups", len(groups)),
	)
	return len(groups), nil
}

type eventClass int

const (
	eventOther eventClass = iota
	eventKeyOn
	eventKeyOff
)

// eventKind classifies a raw event-type value. Off/end is checked first so
// values like "Shift End" never land in the key-on bucket.
func eventKind(raw string) eventClass {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "off") || strings.Contains(v, "end"):
		return eventKeyOff
	case strings.Contains(v, "on") || strings.Contains(v, "start"):
		return eventKeyOn
	default:
		return eventOther
	}
}
