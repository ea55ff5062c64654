package commit

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBreakingChange(t *testing.T) {
	tests := []struct {
		name string
		diff string
		want bool
	}{
		{
			name: "removed js export",
			diff: "-export function DoThing() {}",
			want: true,
		},
		{
			name: "removed comment only",
			diff: "-    // a comment",
			want: false,
		},
		{
			name: "empty diff",
			diff: "",
			want: false,
		},
		{
			name: "whitespace diff",
			diff: "\n  \n",
			want: false,
		},
		{
			name: "added export is not a removal",
			diff: "+export const x = 1",
			want: false,
		},
		{
			name: "removed exported go func",
			diff: "diff --git a/api.go b/api.go\n--- a/api.go\n+++ b/api.go\n@@ -1,3 +1,1 @@\n-func Serve(addr string) error {\n+func serve(addr string) error {",
			want: true,
		},
		{
			name: "removed unexported go func",
			diff: "-func serve(addr string) error {",
			want: false,
		},
		{
			name: "removed exported go method",
			diff: "-func (s *Server) Close() error {",
			want: true,
		},
		{
			name: "removed exported go struct",
			diff: "-type Config struct {",
			want: true,
		},
		{
			name: "removed exported go alias is not a struct",
			diff: "-type Name string",
			want: false,
		},
		{
			name: "removed java method",
			diff: "-    public void run() {",
			want: true,
		},
		{
			name: "removed class",
			diff: "-class Widget:",
			want: true,
		},
		{
			name: "file header naming a public dir is ignored",
			diff: "--- a/src/public/index.html\n+++ b/src/public/index.html\n-<p>hi</p>",
			want: false,
		},
		{
			name: "crlf line endings",
			diff: "-func Run() {\r\n+func run() {\r\n",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBreakingChange(tt.diff))
		})
	}
}

func TestRemovedLines(t *testing.T) {
	diff := "--- a/x.go\n+++ b/x.go\n@@ -1,2 +1,2 @@\n-  old line  \n+new line\n context\n--- a/y.go\n+++ /dev/null\n-\n"
	assert.Equal(t, []string{"old line", ""}, RemovedLines(diff))
}

func TestRemovedLinesHeaderPrefixes(t *testing.T) {
	tests := []struct {
		name string
		diff string
		want []string
	}{
		{
			name: "default prefix",
			diff: "--- a/src/public/x.html\n+++ b/src/public/x.html\n-<p>hi</p>",
			want: []string{"<p>hi</p>"},
		},
		{
			name: "mnemonic prefix",
			diff: "--- i/src/public/x.html\n+++ w/src/public/x.html\n-<p>hi</p>",
			want: []string{"<p>hi</p>"},
		},
		{
			name: "no prefix",
			diff: "--- src/public/x.html\n+++ src/public/x.html\n-<p>hi</p>",
			want: []string{"<p>hi</p>"},
		},
		{
			name: "new file",
			diff: "--- /dev/null\n+++ b/public.go\n+package public",
			want: nil,
		},
		{
			name: "removed sql comment that looks like a header",
			diff: "@@ -1,2 +1,1 @@\n--- a/public schema is deprecated\n select 1;",
			want: []string{"-- a/public schema is deprecated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemovedLines(tt.diff))
		})
	}
}

func TestDetectBreakingChangeIgnoresAnyHeaderPrefix(t *testing.T) {
	for _, prefix := range [][2]string{{"a/", "b/"}, {"i/", "w/"}, {"", ""}} {
		diff := "--- " + prefix[0] + "src/public/index.html\n+++ " + prefix[1] + "src/public/index.html\n-<p>hi</p>\n+<p>hello</p>"
		assert.False(t, DetectBreakingChange(diff), "prefix %q", prefix[0])
	}

	assert.True(t, DetectBreakingChange("@@ -1 +0,0 @@\n--- a/public api note"))
}

func TestMatchBreakingChangeReportsPattern(t *testing.T) {
	m, ok := MatchBreakingChange("-export default App", PublicSymbolPatterns)
	require.True(t, ok)
	assert.Equal(t, "export-keyword", m.Pattern.Name)
	assert.Equal(t, "export default App", m.Line)
}

func TestDetectBreakingChangeWithCustomPatterns(t *testing.T) {
	rust := []SymbolPattern{{
		Name:      "rust-pub-fn",
		Rationale: "public Rust function",
		Pattern:   regexp.MustCompile(`^pub\s+fn\s+`),
	}}

	assert.True(t, DetectBreakingChangeWith("-pub fn parse(s: &str) {", rust))
	assert.False(t, DetectBreakingChange("-pub fn parse(s: &str) {"))
	assert.False(t, DetectBreakingChangeWith("-export function f() {}", rust))
}

func TestPublicSymbolPatternsAreNamed(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range PublicSymbolPatterns {
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.Rationale)
		require.NotNil(t, p.Pattern)
		require.False(t, seen[p.Name], "duplicate pattern name %q", p.Name)
		seen[p.Name] = true
	}
}
