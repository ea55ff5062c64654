package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/go-commitrewrite/internal/commit"
)

// NoScopes is rendered in place of the scope list when history has none.
const NoScopes = "none"

// Input carries the repository facts interpolated into the system prompt.
type Input struct {
	Scopes            []string
	SuspectedBreaking bool
	StagedFiles       []string
}

// System builds the instruction that turns a free-form message into a
// Conventional Commit message.
func System(in Input) string {
	return fmt.Sprintf(`You are an assistant that converts any given commit message into a Conventional Commit message.
Follow these rules:
1. Use one of the standard types: %s.
2. If the commit references or includes "BREAKING CHANGE" or a major incompatible change, append a '!' after the type or scope, e.g. feat!: or feat(ui)!:
3. The subject must be short, imperative style, describing what the commit does.
4. If there's a breaking change, ensure there's a footer line "BREAKING CHANGE: <description>" after the body.
5. Known scopes in this repo are: %s. If the new commit matches one of these areas, reuse the same scope. If uncertain, guess or omit the scope.
6. Output only the final commit message with no extra commentary.

Based on local detection, suspected_breaking=%t.

Changed files:
%s
`, strings.Join(commit.Types, ", "), scopeList(in.Scopes), in.SuspectedBreaking, strings.Join(in.StagedFiles, "\n"))
}

func scopeList(scopes []string) string {
	if len(scopes) == 0 {
		return NoScopes
	}
	sorted := append([]string(nil), scopes...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
