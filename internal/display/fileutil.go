package display

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

// JobFileExt is the extension of generated step job files.
const JobFileExt = ".job"

// IsJobFile reports whether filename looks like a generated step job file:
// two or more digits, a dash, a step name and the .job extension
// (for example "01-build.job").
func IsJobFile(filename string) bool {
	if strings.ContainsAny(filename, "/\n\x00") {
		return false
	}
	name, ok := strings.CutSuffix(filename, JobFileExt)
	if !ok {
		return false
	}

	digits, step, found := strings.Cut(name, "-")
	if !found || len(digits) < 2 || step == "" {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FindJobFiles returns the sorted basenames of job files directly inside
// dirPath. A missing directory yields no files.
func FindJobFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dirPath, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsJobFile(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}
