package harness

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// FindScenarios returns the YAML scenario files under dir, sorted by path.
// A non-empty filter is a glob matched against the file stem
// ("credits-*" matches credits-variants.yaml). Files under golden/
// directories are never scenarios.
func FindScenarios(dir, filter string) ([]string, error) {
	var matcher glob.Glob
	if filter != "" {
		g, err := glob.Compile(filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		matcher = g
	}

	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if matcher != nil && !matcher.Match(strings.TrimSuffix(d.Name(), ext)) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
