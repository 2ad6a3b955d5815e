package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files in the root directory for "**/" patterns
	rootGlob glob.Glob
}

// BatchDiscovery finds batch files under a root directory with glob
// patterns and ignore rules.
type BatchDiscovery struct {
	rootDir        string
	patterns       []compiledPattern
	ignorePatterns []compiledPattern
}

// New creates a discovery instance. Patterns are matched against
// slash-separated paths relative to rootDir.
func New(rootDir string, patterns, ignorePatterns []string) (*BatchDiscovery, error) {
	bd := &BatchDiscovery{rootDir: rootDir}

	var err error
	if bd.patterns, err = compileAll(patterns); err != nil {
		return nil, err
	}
	if bd.ignorePatterns, err = compileAll(ignorePatterns); err != nil {
		return nil, err
	}

	return bd, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.json" should match both "a.json" and "dir/a.json"
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// RootDir returns the directory discovery is relative to.
func (bd *BatchDiscovery) RootDir() string {
	return bd.rootDir
}

// Discover walks the directory tree and returns matching batch files as
// absolute-or-root-joined paths, sorted for a stable processing order.
func (bd *BatchDiscovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(bd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(bd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && bd.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if bd.Matches(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover batch files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether a root-relative, slash-separated path is a batch
// file: it matches a pattern and no ignore rule.
func (bd *BatchDiscovery) Matches(relPath string) bool {
	if bd.ShouldIgnore(relPath) {
		return false
	}
	return matchesAny(relPath, bd.patterns)
}

// ShouldIgnore checks if a path matches any ignore pattern.
func (bd *BatchDiscovery) ShouldIgnore(relPath string) bool {
	// Always ignore the .docmeta directory
	if relPath == ".docmeta" || strings.HasPrefix(relPath, ".docmeta/") {
		return true
	}

	if matchesAny(relPath, bd.ignorePatterns) {
		return true
	}

	// A directory "node_modules" is ignored by the pattern "node_modules/**"
	return matchesAny(relPath+"/**", bd.ignorePatterns)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
