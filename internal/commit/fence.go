package commit

import (
	"regexp"
	"strings"
)

var openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*\n")

// StripFences removes a markdown code fence wrapped around the model output.
// A closing fence is any line holding only backticks; backticks inside a
// line of the message are left alone.
func StripFences(raw string) string {
	out := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if loc := openingFence.FindStringIndex(out); loc != nil {
		out = out[loc[1]:]
	}

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "```" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
