package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable that pins the project directory.
const HomeEnv = "GRIDLAB_HOME"

// FindProjectDir returns the directory whose .gridlab/ holds the
// configuration. Priority order:
//  1. GRIDLAB_HOME (if set)
//  2. the nearest ancestor of start containing a .gridlab directory
//  3. start itself
func FindProjectDir(start string) (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	current := abs
	for {
		if info, err := os.Stat(filepath.Join(current, DirName)); err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return abs, nil
}
