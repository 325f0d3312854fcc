package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/traxovo/attendance-cli/internal/config"
	"github.com/traxovo/attendance-cli/internal/model"
)

// buildFixtureWorkbook writes an equipment-billing workbook with all four
// sheets populated.
func buildFixtureWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := xlsx.NewFile()

	sheets := []struct {
		name string
		rows [][]string
	}{
		{"Asset List", [][]string{
			{"Driver", "Equip #", "Job Site"},
			{"John Smith", "EX-210", "Site A"},
			{"Jane Doe", "DZ-140", "Site B"},
			{"Carlos Avila", "T104", "Site C"},
		}},
		{"Drivers", [][]string{
			{"Driver Name"},
			{"John Smith"},
			{"Jane Doe"},
		}},
		{"Jobs", [][]string{
			{"Driver", "Job"},
			{"John Smith", "Site A"},
		}},
		{"Start Time & Job", [][]string{
			{"Driver", "Start Time", "End Time"},
			{"Jane Doe", "06:00", "14:00"},
		}},
	}
	for _, s := range sheets {
		sheet, err := f.AddSheet(s.name)
		require.NoError(t, err)
		for _, row := range s.rows {
			r := sheet.AddRow()
			for _, cell := range row {
				r.AddCell().Value = cell
			}
		}
	}

	path := filepath.Join(dir, "equipment_billing.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	csvDir := filepath.Join(root, "csv")
	require.NoError(t, os.MkdirAll(csvDir, 0o755))

	dh := `Driver,Vehicle,Event,DateTime,Location
John Smith,EX-210,Key On,2025-05-01 07:20:00,Site A Yard
John Smith,EX-210,Key Off,2025-05-01 17:00:00,Site A Yard
Jane Doe,DZ-140,Key On,2025-05-01 06:05:00,Site B
Jane Doe,DZ-140,Key Off,2025-05-01 14:00:00,Site B
Ghost Driver,ZZ-9,Key On,2025-05-01 08:00:00,Unknown Lot
`
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "DrivingHistory_20250501.csv"), []byte(dh), 0o644))

	ad := `Driver,Start Time,End Time,Location In,Location Out
John Smith,2025-05-01 07:25:00,2025-05-01 16:55:00,Site A Yard,Site A Yard
`
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "ActivityDetail_20250501.csv"), []byte(ad), 0o644))

	return &config.Config{
		Sources: config.SourcesConfig{
			WorkbookPath:       buildFixtureWorkbook(t, root),
			DrivingHistoryDirs: []string{csvDir},
			ActivityDetailDirs: []string{csvDir},
			ReportDir:          filepath.Join(root, "reports"),
		},
		Schedule: config.ScheduleConfig{
			DefaultStart:      "07:00",
			DefaultEnd:        "17:00",
			LateThresholdMin:  15,
			EarlyThresholdMin: 30,
			ShiftsPath:        "",
		},
	}
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	cfg := fixtureConfig(t)
	shifts, err := config.LoadShifts("", cfg.Schedule)
	require.NoError(t, err)

	p := New(cfg, shifts, nil, nil)
	result, err := p.Run(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, "2025-05-01", result.TargetDate)
	assert.Empty(t, result.RunID)

	// Four distinct drivers: three on the Asset List, one telemetry-only.
	assert.Equal(t, 4, result.Stats.TotalDriversParsed)
	assert.Equal(t, 3, result.Stats.TotalMatched)
	assert.Equal(t, 1, result.Stats.TotalExcluded)
	assert.Equal(t, 1, result.Stats.ExclusionReasons["Driver not found in Asset List"])

	byName := make(map[string]*model.DriverRecord)
	for _, rec := range result.Report.Drivers {
		byName[rec.NormalizedName] = rec
	}

	// John keyed on at 07:20 against the 07:00 default: 20 minutes late.
	john := byName["john smith"]
	require.NotNil(t, john)
	assert.Equal(t, model.StatusLate, john.Status)
	assert.Equal(t, "20 minutes late", john.StatusReason)
	assert.Equal(t, 20, john.KeyDeltaMinutes)
	assert.Equal(t, model.VerificationHigh, john.Verification)

	// Jane's derived 06:00 start absorbs her 06:05 key-on.
	jane := byName["jane doe"]
	require.NotNil(t, jane)
	assert.Equal(t, model.StatusOnTime, jane.Status)
	assert.Equal(t, 5, jane.KeyDeltaMinutes)

	// Carlos appears only on the billing sheets: no telemetry.
	carlos := byName["carlos avila"]
	require.NotNil(t, carlos)
	assert.Equal(t, model.StatusNotOnJob, carlos.Status)
	assert.Equal(t, "No telematics data", carlos.StatusReason)

	require.Len(t, result.Report.Unmatched, 1)
	assert.Equal(t, "ghost driver", result.Report.Unmatched[0].NormalizedName)
	assert.Equal(t, model.VerificationUnverified, result.Report.Unmatched[0].Verification)

	// Both artifacts exist and their recorded checksums match file contents.
	require.Len(t, result.Artifacts, 2)
	for _, a := range result.Artifacts {
		data, readErr := os.ReadFile(a.Path)
		require.NoError(t, readErr)
		assert.Equal(t, Checksum(data), a.Checksum, a.Kind)
	}

	reportData, err := os.ReadFile(result.Artifacts[0].Path)
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(reportData, &decoded))
	assert.Len(t, decoded.Drivers, 3)
	assert.Len(t, decoded.Unmatched, 1)
}

func TestPipelineRun_MissingWorkbookIsFatal(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Sources.WorkbookPath = filepath.Join(t.TempDir(), "nope.xlsx")
	shifts, err := config.LoadShifts("", cfg.Schedule)
	require.NoError(t, err)

	p := New(cfg, shifts, nil, nil)
	_, err = p.Run(context.Background(), testDate)
	assert.Error(t, err)
}

func TestPipelineRun_MissingTelemetryDegrades(t *testing.T) {
	cfg := fixtureConfig(t)
	// Point the CSV search somewhere empty; only the workbook remains.
	empty := t.TempDir()
	cfg.Sources.DrivingHistoryDirs = []string{empty}
	cfg.Sources.ActivityDetailDirs = []string{empty}
	shifts, err := config.LoadShifts("", cfg.Schedule)
	require.NoError(t, err)

	p := New(cfg, shifts, nil, nil)
	result, err := p.Run(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.TotalMatched)
	assert.Zero(t, result.Stats.TotalExcluded)
	assert.NotContains(t, result.Stats.SourceRecordCounts, model.SourceDrivingHistory)
	assert.NotContains(t, result.Stats.SourceRecordCounts, model.SourceActivityDetail)

	// Without telemetry every matched driver lands in Not On Job.
	assert.Equal(t, 3, result.Stats.ClassificationCounts[model.StatusNotOnJob])
	for _, rec := range result.Report.Drivers {
		assert.Equal(t, "No telematics data", rec.StatusReason)
	}
}

func TestAppendDir(t *testing.T) {
	assert.Equal(t, []string{"a"}, appendDir([]string{"a"}, ""))
	assert.Equal(t, []string{"a", "b"}, appendDir([]string{"a"}, "b"))
	assert.Equal(t, []string{"a"}, appendDir([]string{"a"}, "a"))
}

func TestPipelineRun_ContextPlumbing(t *testing.T) {
	// A nil store and nil FTP sync mean context is never consulted; the run
	// still completes under an already-cancelled context.
	cfg := fixtureConfig(t)
	shifts, err := config.LoadShifts("", cfg.Schedule)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(cfg, shifts, nil, nil)
	_, err = p.Run(ctx, testDate)
	assert.NoError(t, err)
}

func TestPipelineRun_ReportTimestampIsRecent(t *testing.T) {
	cfg := fixtureConfig(t)
	shifts, err := config.LoadShifts("", cfg.Schedule)
	require.NoError(t, err)

	before := time.Now()
	result, err := New(cfg, shifts, nil, nil).Run(context.Background(), testDate)
	require.NoError(t, err)
	assert.False(t, result.Report.GeneratedAt.Before(before))
}
