package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions lists the containers the batch picks up when none are configured.
var DefaultExtensions = []string{".mp3"}

// Discover lists inputDir (not recursively) and returns the files whose extension
// matches one of exts, case-insensitively, sorted by path.
func Discover(inputDir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(inputDir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
