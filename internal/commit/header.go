package commit

import (
	"regexp"
	"strings"
)

var (
	headerPattern  = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^\)]+)\))?(!)?:\s*(.+)$`)
	breakingFooter = regexp.MustCompile(`(?m)^BREAKING[ -]CHANGE:\s*\S`)
)

// Header is the parsed first line of a Conventional Commit message.
type Header struct {
	Type        string
	Scope       string
	Breaking    bool
	Description string
}

// ParseHeader parses the headline of message. It reports false when the
// headline is not of the form `type(scope)!: description`.
func ParseHeader(message string) (Header, bool) {
	msg := SplitMessage(message)
	m := headerPattern.FindStringSubmatch(msg.Headline)
	if m == nil {
		return Header{}, false
	}
	return Header{
		Type:        strings.ToLower(m[1]),
		Scope:       strings.TrimSpace(m[2]),
		Breaking:    m[3] == "!",
		Description: strings.TrimSpace(m[4]),
	}, true
}

// IsKnownType reports whether t is one of Types.
func IsKnownType(t string) bool {
	for _, known := range Types {
		if known == t {
			return true
		}
	}
	return false
}

// DeclaresBreakingChange reports whether message marks itself as breaking,
// either with `!` in the header or with a BREAKING CHANGE footer.
func DeclaresBreakingChange(message string) bool {
	if h, ok := ParseHeader(message); ok && h.Breaking {
		return true
	}
	return breakingFooter.MatchString(message)
}
