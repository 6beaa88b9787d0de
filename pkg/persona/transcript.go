package persona

import (
	"strings"
	"time"
)

// Entry is one line of a transcript.
type Entry struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// BuildContext renders the last window entries of history followed by the
// new utterance, one "<Label>: <content>" line each.
func BuildContext(history []Entry, utterance string, pair Pair, window int) string {
	if window < 0 {
		window = 0
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}

	var sb strings.Builder
	for _, e := range history[start:] {
		sb.WriteString(pair.Label(e.Sender))
		sb.WriteString(": ")
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(pair.UserLabel)
	sb.WriteString(": ")
	sb.WriteString(utterance)
	return sb.String()
}

// extendContext appends a persona reply to an already rendered context.
func extendContext(window string, p Persona, reply string) string {
	return window + "\n" + p.Label + ": " + reply
}
