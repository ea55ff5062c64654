package commit

import (
	"regexp"
	"sort"
	"strings"
)

// scopePattern matches `type(scope):` and `type:` at the start of a subject.
var scopePattern = regexp.MustCompile(`^[a-zA-Z]+(?:\(([^\)]+)\))?:`)

// ScopeSet is a deduplicated set of scope names.
type ScopeSet map[string]struct{}

// Add inserts a scope.
func (s ScopeSet) Add(scope string) {
	s[scope] = struct{}{}
}

// Has reports whether scope is in the set.
func (s ScopeSet) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// Sorted returns the scopes in lexical order.
func (s ScopeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

// ExtractScopes collects the scopes used by Conventional Commit subjects.
// Subjects that do not match, or whose scope is blank, contribute nothing.
func ExtractScopes(subjects []string) ScopeSet {
	scopes := make(ScopeSet)
	for _, subject := range subjects {
		m := scopePattern.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		if scope := strings.TrimSpace(m[1]); scope != "" {
			scopes.Add(scope)
		}
	}
	return scopes
}
