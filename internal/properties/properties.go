// Package properties reads and writes the JSON property files kept in each
// run directory and merges them across an experiment.
package properties

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/gridlab/internal/filelock"
	"github.com/harrison/gridlab/internal/models"
)

// File names inside a run directory.
const (
	FileName        = "properties"
	StaticFileName  = "static-properties"
	FixedStaticName = "static-properties2"
)

// Load decodes the property file at path. A missing file yields an empty
// record so parsers can start from scratch.
func Load(path string) (models.RunProperties, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.RunProperties{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read properties %s: %w", path, err)
	}
	return Decode(data, path)
}

// Decode parses a property file body. An empty body is an empty record.
func Decode(data []byte, source string) (models.RunProperties, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.RunProperties{}, nil
	}
	props := models.RunProperties{}
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("decode properties %s: %w", source, err)
	}
	return props, nil
}

// Encode renders props as indented JSON with sorted keys.
func Encode(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes props to path atomically while holding path + ".lock".
func Save(path string, props models.RunProperties) error {
	data, err := Encode(props)
	if err != nil {
		return err
	}
	return filelock.LockAndWrite(path, data, 0644)
}

// RunDirs lists the run directories of an experiment (runs-*/*) in sorted
// order.
func RunDirs(expDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(expDir, "runs-*", "*"))
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, m)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// CollectResult is the merged view of every parsed run in an experiment.
type CollectResult struct {
	// Runs maps a run key to its merged properties.
	Runs map[string]models.RunProperties
	// Skipped lists run directories without a properties file.
	Skipped []string
}

// Collect merges each run's properties with its static properties, static
// values taking precedence. Runs are keyed by their id joined with "-", or
// by their path relative to expDir when the id is missing.
func Collect(expDir string) (*CollectResult, error) {
	dirs, err := RunDirs(expDir)
	if err != nil {
		return nil, err
	}

	result := &CollectResult{Runs: make(map[string]models.RunProperties, len(dirs))}
	for _, dir := range dirs {
		propsPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(propsPath); errors.Is(err, fs.ErrNotExist) {
			result.Skipped = append(result.Skipped, dir)
			continue
		}

		props, err := Load(propsPath)
		if err != nil {
			return nil, err
		}
		static, err := Load(filepath.Join(dir, StaticFileName))
		if err != nil {
			return nil, err
		}
		props.Merge(static)

		key := RunKey(props)
		if key == "" {
			key, _ = filepath.Rel(expDir, dir)
		}
		if _, dup := result.Runs[key]; dup {
			return nil, fmt.Errorf("duplicate run id %q in %s", key, dir)
		}
		result.Runs[key] = props
	}
	return result, nil
}

// LoadCollected reads a file written by WriteCollected.
func LoadCollected(path string) (map[string]models.RunProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collected properties: %w", err)
	}
	runs := make(map[string]models.RunProperties)
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("decode collected properties %s: %w", path, err)
	}
	return runs, nil
}

// WriteCollected writes the merged runs to path.
func WriteCollected(path string, result *CollectResult) error {
	data, err := Encode(result.Runs)
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(path, data, 0644)
}

// FixStatic rewrites the static properties of every run: the string form of
// the appendKey property is appended to the run id and algorithmPrefix is
// prepended to the algorithm. Results go to static-properties2; the original
// files are left untouched. It returns the number of runs rewritten.
func FixStatic(expDir, appendKey, algorithmPrefix string) (int, error) {
	dirs, err := RunDirs(expDir)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, dir := range dirs {
		static, err := Load(filepath.Join(dir, StaticFileName))
		if err != nil {
			return fixed, err
		}
		if len(static) == 0 {
			continue
		}

		if appendKey != "" {
			value, ok := static[appendKey]
			if !ok {
				return fixed, fmt.Errorf("%s: static property %q missing", dir, appendKey)
			}
			static["id"] = append(idParts(static), formatValue(value))
		}
		if algorithmPrefix != "" {
			algorithm, _ := static["algorithm"].(string)
			static["algorithm"] = algorithmPrefix + algorithm
		}

		data, err := Encode(static)
		if err != nil {
			return fixed, err
		}
		if err := filelock.AtomicWrite(filepath.Join(dir, FixedStaticName), data, 0644); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

// RunKey joins the run id of props with "-". It is empty when props has no id.
func RunKey(props models.RunProperties) string {
	return strings.Join(idParts(props), "-")
}

func idParts(props models.RunProperties) []string {
	switch id := props["id"].(type) {
	case []string:
		return append([]string(nil), id...)
	case []interface{}:
		parts := make([]string, 0, len(id))
		for _, p := range id {
			parts = append(parts, formatValue(p))
		}
		return parts
	}
	return nil
}

// formatValue renders integral floats without a fractional part, matching
// how the value was written.
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	}
	return fmt.Sprint(v)
}
