package fetcher

import (
	"os"
	"path/filepath"
	"strings"
)

// LocateDated finds the source file for one target date. It first tries each
// canonical filename in each candidate directory, then falls back to scanning
// the directories for any CSV whose name contains both the keyword and the
// YYYYMMDD stamp (case-insensitive). Returns the first match; ok is false
// when the source is simply absent for the date, which is never fatal.
func LocateDated(dirs []string, canonicals []string, keyword, stamp string) (path string, ok bool) {
	for _, dir := range dirs {
		for _, name := range canonicals {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, true
			}
		}
	}

	keyword = strings.ToLower(strings.ReplaceAll(keyword, " ", ""))
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := strings.ToLower(e.Name())
			if !strings.HasSuffix(name, ".csv") {
				continue
			}
			flat := strings.ReplaceAll(strings.ReplaceAll(name, "_", ""), " ", "")
			if strings.Contains(flat, keyword) && strings.Contains(name, stamp) {
				return filepath.Join(dir, e.Name()), true
			}
		}
	}

	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
