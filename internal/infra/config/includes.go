package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxIncludeDepth = 10

// includeResolver overlays included YAML files onto a Config. Each file may
// include others; cycles and directory escapes are rejected.
type includeResolver struct {
	cfg     *Config
	visited map[string]bool
}

// processIncludes merges the files named by cfg.Includes, resolved against
// baseDir, into cfg.
func processIncludes(cfg *Config, baseDir string, visited map[string]bool, depth int) error {
	if visited == nil {
		visited = make(map[string]bool)
	}
	r := &includeResolver{cfg: cfg, visited: visited}
	return r.resolve(baseDir, depth)
}

func (r *includeResolver) resolve(baseDir string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("config includes: max depth %d exceeded", maxIncludeDepth)
	}

	patterns := r.cfg.Includes
	r.cfg.Includes = nil
	for _, pattern := range patterns {
		paths, err := expandInclude(pattern, baseDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return fmt.Errorf("config includes: abs path %q: %w", p, err)
			}
			if r.visited[abs] {
				return fmt.Errorf("config includes: circular include detected for %q", abs)
			}
			r.visited[abs] = true

			if err := r.merge(abs, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// merge overlays one file and then follows its own includes.
func (r *includeResolver) merge(path string, depth int) error {
	if err := validatePermissions(path); err != nil {
		return fmt.Errorf("config includes: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config includes: read %q: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}

	r.cfg.Includes = nil
	if err := yaml.Unmarshal(data, r.cfg); err != nil {
		return fmt.Errorf("config includes: parse %q: %w", path, err)
	}
	if len(r.cfg.Includes) == 0 {
		return nil
	}
	return r.resolve(filepath.Dir(path), depth)
}

// expandInclude resolves pattern against baseDir. Globs that match nothing
// are skipped; literal paths are returned so a missing file is reported.
func expandInclude(pattern, baseDir string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}
	pattern = filepath.Clean(pattern)

	if rel, err := filepath.Rel(baseDir, pattern); err == nil && strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("config includes: path %q escapes config directory", pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("config includes: glob %q: %w", pattern, err)
	}
	if len(matches) == 0 && !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}
	return matches, nil
}
