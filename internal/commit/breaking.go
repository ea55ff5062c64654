package commit

import (
	"regexp"
	"strings"
)

// SymbolPattern flags a removed line that looks like part of a public API.
type SymbolPattern struct {
	Name      string
	Rationale string
	Pattern   *regexp.Regexp
}

// PublicSymbolPatterns is checked in order against every removed diff line.
// Append to it to teach the heuristic another language's conventions.
var PublicSymbolPatterns = []SymbolPattern{
	{
		Name:      "public-keyword",
		Rationale: "visibility modifier in Java, C#, TypeScript and PHP",
		Pattern:   regexp.MustCompile(`\bpublic\b`),
	},
	{
		Name:      "export-keyword",
		Rationale: "JavaScript/TypeScript module export",
		Pattern:   regexp.MustCompile(`\bexport\b`),
	},
	{
		Name:      "function-declaration",
		Rationale: "named JavaScript/PHP function",
		Pattern:   regexp.MustCompile(`\bfunction\s+[A-Za-z0-9_]+\s*\(`),
	},
	{
		Name:      "capitalized-class",
		Rationale: "class declaration with an exported-style name",
		Pattern:   regexp.MustCompile(`\bclass\s+[A-Z]`),
	},
	{
		Name:      "go-exported-func",
		Rationale: "exported Go function",
		Pattern:   regexp.MustCompile(`^func\s+[A-Z][a-zA-Z0-9_]*\s*\(`),
	},
	{
		Name:      "go-exported-method",
		Rationale: "exported Go method",
		Pattern:   regexp.MustCompile(`^func\s*\([^)]*\)\s+[A-Z][a-zA-Z0-9_]*\s*\(`),
	},
	{
		Name:      "go-exported-type",
		Rationale: "exported Go struct or interface",
		Pattern:   regexp.MustCompile(`^type\s+[A-Z][a-zA-Z0-9_]*\s+(struct|interface)`),
	},
}

// RemovedLines returns the deleted lines of a unified diff, without the
// leading marker and surrounding whitespace. File headers, a "---" line
// directly followed by a "+++" line, are skipped whatever their prefix.
func RemovedLines(diff string) []string {
	lines := strings.Split(diff, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	var removed []string
	for i, line := range lines {
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if i+1 < len(lines) && isFileHeader(line, lines[i+1]) {
			continue
		}
		removed = append(removed, strings.TrimSpace(line[1:]))
	}
	return removed
}

func isFileHeader(line, next string) bool {
	return strings.HasPrefix(line, "--- ") && strings.HasPrefix(next, "+++ ")
}

// DetectBreakingChange reports whether any removed line matches
// PublicSymbolPatterns. The verdict is advisory.
func DetectBreakingChange(diff string) bool {
	_, ok := MatchBreakingChange(diff, PublicSymbolPatterns)
	return ok
}

// DetectBreakingChangeWith is DetectBreakingChange over a caller supplied list.
func DetectBreakingChangeWith(diff string, patterns []SymbolPattern) bool {
	_, ok := MatchBreakingChange(diff, patterns)
	return ok
}

// Match records which pattern fired on which removed line.
type Match struct {
	Pattern SymbolPattern
	Line    string
}

// MatchBreakingChange returns the first removed line that matches one of patterns.
func MatchBreakingChange(diff string, patterns []SymbolPattern) (Match, bool) {
	if strings.TrimSpace(diff) == "" {
		return Match{}, false
	}
	for _, line := range RemovedLines(diff) {
		for _, p := range patterns {
			if p.Pattern.MatchString(line) {
				return Match{Pattern: p, Line: line}, true
			}
		}
	}
	return Match{}, false
}
