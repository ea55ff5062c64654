package commit

import "strings"

// Types lists the Conventional Commit type tags the rewrite may use.
var Types = []string{"feat", "fix", "docs", "chore", "refactor", "style", "test", "build", "ci", "perf"}

// Message holds the final headline and body to be presented or committed.
type Message struct {
	Headline string
	Body     string
}

// String renders the message the way git stores it.
func (m Message) String() string {
	if m.Body == "" {
		return m.Headline
	}
	return m.Headline + "\n\n" + m.Body
}

// SplitMessage separates the first line from the rest of the message.
func SplitMessage(text string) Message {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	headline, body, _ := strings.Cut(text, "\n")
	return Message{
		Headline: strings.TrimSpace(headline),
		Body:     strings.TrimSpace(body),
	}
}
