// Package ignore provides gitignore-style pattern matching used to filter
// the directory walk that feeds the Merkle builder. It supports exact
// matches, directory-only matches, glob patterns (including "**"), and
// negation, and layers multiple pattern sources (a global seed file plus
// per-directory ".continueignore" overrides) the way a workspace-local
// ignore system does.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const (
	// globDoubleStar represents the "**" pattern that matches any number of directories.
	globDoubleStar = "**"
)

// Matcher determines if a path should be excluded from the walk.
type Matcher interface {
	// Match returns true if the path should be excluded.
	// path is relative to the root being walked.
	Match(path string, isDir bool) bool
}

// PatternMatcher matches paths against a flat list of exclusion patterns.
// Supports patterns similar to .gitignore:
//   - Exact matches: "node_modules"
//   - Directory matches: "node_modules/" (matches directories only)
//   - Glob patterns: "*.log", "**/build"
//   - Negation: "!important.log" (un-excludes previously excluded paths)
type PatternMatcher struct {
	patterns []pattern
}

type pattern struct {
	raw        string
	isDirOnly  bool
	isNegation bool
	segments   []string
	hasGlob    bool
}

// NewPatternMatcher compiles a PatternMatcher from a list of pattern lines.
// Empty lines and lines starting with "#" are treated as comments and ignored.
func NewPatternMatcher(patterns []string) *PatternMatcher {
	pm := &PatternMatcher{
		patterns: make([]pattern, 0, len(patterns)),
	}

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		pat := pattern{raw: p}

		if strings.HasPrefix(p, "!") {
			pat.isNegation = true
			p = strings.TrimPrefix(p, "!")
		}

		if strings.HasSuffix(p, "/") {
			pat.isDirOnly = true
			p = strings.TrimSuffix(p, "/")
		}

		p = filepath.ToSlash(p)
		pat.segments = strings.Split(p, "/")
		pat.hasGlob = strings.Contains(p, "*") || strings.Contains(p, "?")

		pm.patterns = append(pm.patterns, pat)
	}

	return pm
}

// Match reports whether any pattern matches path, accounting for negation.
// The unexported match additionally reports whether any pattern (inclusion
// or negation) fired at all, so callers layering multiple pattern sources
// can tell "not excluded" apart from "no opinion" (needed to let a deeper
// ".continueignore" override a shallower one).
func (pm *PatternMatcher) Match(path string, isDir bool) bool {
	matched, _ := pm.match(path, isDir)
	return matched
}

func (pm *PatternMatcher) match(path string, isDir bool) (matched bool, decided bool) {
	path = filepath.ToSlash(path)
	pathSegments := strings.Split(path, "/")

	matchedExclude := false
	matchedNegation := false

	for _, pat := range pm.patterns {
		if pat.match(pathSegments, isDir) {
			if pat.isNegation {
				matchedNegation = true
			} else {
				matchedExclude = true
			}
		}
	}

	if matchedNegation {
		return false, true
	}
	if matchedExclude {
		return true, true
	}
	return false, false
}

func (p *pattern) match(pathSegments []string, isDir bool) bool {
	if p.isDirOnly && !isDir {
		return false
	}

	if !p.hasGlob && len(p.segments) == 1 {
		for _, seg := range pathSegments {
			if seg == p.segments[0] {
				return true
			}
		}
		return false
	}

	return p.matchSegments(pathSegments)
}

func (p *pattern) matchSegments(pathSegments []string) bool {
	patSegs := p.segments

	if len(patSegs) > 0 && patSegs[0] == globDoubleStar {
		if len(patSegs) == 1 {
			return true
		}
		remainingPat := patSegs[1:]
		for i := 0; i <= len(pathSegments); i++ {
			if matchSegmentsAt(pathSegments[i:], remainingPat) {
				return true
			}
		}
		return false
	}

	if len(patSegs) > 0 && patSegs[len(patSegs)-1] == globDoubleStar {
		return matchSegmentsAt(pathSegments, patSegs[:len(patSegs)-1])
	}

	return matchSegmentsAt(pathSegments, patSegs)
}

func matchSegmentsAt(pathSegs []string, patSegs []string) bool {
	if len(patSegs) == 0 {
		return true
	}
	if len(pathSegs) == 0 {
		return false
	}

	for i := 0; i <= len(pathSegs)-len(patSegs); i++ {
		matched := true
		for j := 0; j < len(patSegs); j++ {
			if !matchSegment(pathSegs[i+j], patSegs[j]) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}

	return false
}

func matchSegment(pathSeg, patSeg string) bool {
	if patSeg == pathSeg {
		return true
	}
	if strings.Contains(patSeg, "*") || strings.Contains(patSeg, "?") {
		return matchGlob(pathSeg, patSeg)
	}
	return false
}

// matchGlob performs simple glob matching where * matches any sequence and
// ? matches any single character.
func matchGlob(s, pattern string) bool {
	patternIdx := 0
	strIdx := 0

	for patternIdx < len(pattern) && strIdx < len(s) {
		switch {
		case pattern[patternIdx] == '*':
			if patternIdx == len(pattern)-1 {
				return true
			}
			for i := strIdx; i <= len(s); i++ {
				if matchGlob(s[i:], pattern[patternIdx+1:]) {
					return true
				}
			}
			return false
		case pattern[patternIdx] == '?':
			patternIdx++
			strIdx++
		case pattern[patternIdx] == s[strIdx]:
			patternIdx++
			strIdx++
		default:
			return false
		}
	}

	for patternIdx < len(pattern) && pattern[patternIdx] == '*' {
		patternIdx++
	}

	return patternIdx == len(pattern) && strIdx == len(s)
}

// readPatternFile reads newline-delimited patterns from path. A missing
// file yields (nil, nil), not an error.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}

// noOpMatcher never excludes anything.
type noOpMatcher struct{}

func (noOpMatcher) Match(path string, isDir bool) bool { return false }
