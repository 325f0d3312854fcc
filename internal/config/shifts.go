package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ShiftWindow is a wall-clock work window in HH:MM form.
type ShiftWindow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ShiftBook holds per-job-site shift windows plus the fleet-wide default.
// Loaded from shifts.yaml; the derived Start Time & Job sheet still takes
// precedence over anything here.
type ShiftBook struct {
	Default ShiftWindow            `yaml:"default"`
	Sites   map[string]ShiftWindow `yaml:"sites"`
}

// LoadShifts reads a shifts.yaml file. A missing file is not an error: the
// returned book carries only the built-in default window.
func LoadShifts(path string, schedule ScheduleConfig) (*ShiftBook, error) {
	book := &ShiftBook{
		Default: ShiftWindow{Start: schedule.DefaultStart, End: schedule.DefaultEnd},
		Sites:   make(map[string]ShiftWindow),
	}

	if path == "" {
		return book, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return book, nil
		}
		return nil, eris.Wrapf(err, "config: read shifts file %s", path)
	}

	var parsed ShiftBook
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, eris.Wrapf(err, "config: parse shifts file %s", path)
	}

	if parsed.Default.Start != "" {
		book.Default.Start = parsed.Default.Start
	}
	if parsed.Default.End != "" {
		book.Default.End = parsed.Default.End
	}
	for site, window := range parsed.Sites {
		book.Sites[strings.ToLower(strings.TrimSpace(site))] = window
	}

	return book, nil
}

// HasOverride reports whether a job site has its own shift window. Lookup is
// case-insensitive.
func (b *ShiftBook) HasOverride(jobSite string) bool {
	_, ok := b.Sites[strings.ToLower(strings.TrimSpace(jobSite))]
	return ok
}

// Resolve returns the shift window for a job site, falling back to the
// default when the site has no override. Lookup is case-insensitive.
func (b *ShiftBook) Resolve(jobSite string) ShiftWindow {
	if w, ok := b.Sites[strings.ToLower(strings.TrimSpace(jobSite))]; ok {
		if w.Start == "" {
			w.Start = b.Default.Start
		}
		if w.End == "" {
			w.End = b.Default.End
		}
		return w
	}
	return b.Default
}
