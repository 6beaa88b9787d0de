// Package persona runs a two-persona chat turn: the user speaks, the first
// persona answers, and after a pacing pause the second persona answers with
// the first reply in view.
package persona

import "fmt"

const (
	ChatTypeDualPersona = "dual-persona"
	ChatTypeStudyPair   = "study-pair"
)

const (
	SenderUser   = "user"
	SenderLeo    = "leo"
	SenderMax    = "max"
	SenderTutor1 = "tutor1"
	SenderTutor2 = "tutor2"
)

// Persona is one scripted speaker. Directive is a format string with a
// single %s for the conversation context.
type Persona struct {
	Sender    string
	Label     string
	Preamble  string
	directive string
}

func (p Persona) Directive(window string) string {
	return fmt.Sprintf(p.directive, window)
}

// Pair is the closed set of speakers for one chat type.
type Pair struct {
	ChatType    string
	UserLabel   string
	TitlePrefix string
	First       Persona
	Second      Persona
}

// Label maps a sender tag to the name used inside the context window.
func (p Pair) Label(sender string) string {
	switch sender {
	case p.First.Sender:
		return p.First.Label
	case p.Second.Sender:
		return p.Second.Label
	default:
		return p.UserLabel
	}
}

func (p Pair) HasSender(sender string) bool {
	return sender == SenderUser || sender == p.First.Sender || sender == p.Second.Sender
}

var (
	Leo = Persona{
		Sender: SenderLeo,
		Label:  "Leo",
		Preamble: "You are Leo, a dedicated AI assistant who gives precise answers with a touch of fun and engagement. " +
			"You are intelligent, helpful and make conversations enjoyable. Keep responses conversational and friendly. " +
			"When other AIs respond, acknowledge them naturally in the conversation.",
		directive: "Here's our conversation so far:\n%s\n\nPlease respond as Leo. Keep it conversational and engaging.",
	}

	Max = Persona{
		Sender: SenderMax,
		Label:  "Max",
		Preamble: "You are Max, a funny and witty AI assistant who delivers accurate answers with humor and lightness. " +
			"You add entertainment value while staying correct and helpful. Keep responses conversational and add appropriate humor. " +
			"When other AIs respond, engage with them naturally like friends would.",
		directive: "Here's our conversation so far:\n%s\n\nPlease respond as Max. You can respond to both the user and Leo's message. Keep it funny and engaging while being helpful.",
	}

	Tutor1 = Persona{
		Sender: SenderTutor1,
		Label:  "Tutor1",
		Preamble: "You are an expert AI tutor who breaks complex concepts down into simple, understandable steps. " +
			"Adapt to the student's learning style and give clear, structured explanations. Encourage questions and give examples. " +
			"Work with the other tutor to provide complete learning support.",
		directive: "Learning context:\n%s\n\nPlease provide educational support as Tutor1. Focus on clear explanations and structured learning.",
	}

	Tutor2 = Persona{
		Sender: SenderTutor2,
		Label:  "Tutor2",
		Preamble: "You are an engaging AI tutor who makes learning memorable through analogies, stories and interactive explanations. " +
			"Help the student connect new concepts to things they already know. " +
			"Work with the other tutor so the student gets well-rounded support.",
		directive: "Learning context:\n%s\n\nPlease provide additional educational support as Tutor2. You can build on Tutor1's explanation with engaging examples and connections.",
	}
)

var pairs = map[string]Pair{
	ChatTypeDualPersona: {
		ChatType:    ChatTypeDualPersona,
		UserLabel:   "User",
		TitlePrefix: "Chat",
		First:       Leo,
		Second:      Max,
	},
	ChatTypeStudyPair: {
		ChatType:    ChatTypeStudyPair,
		UserLabel:   "Student",
		TitlePrefix: "Study Session",
		First:       Tutor1,
		Second:      Tutor2,
	},
}

func PairFor(chatType string) (Pair, bool) {
	p, ok := pairs[chatType]
	return p, ok
}

func IsChatType(chatType string) bool {
	_, ok := pairs[chatType]
	return ok
}

// ValidSender reports whether sender may author a message in a
// conversation of the given chat type.
func ValidSender(chatType, sender string) bool {
	p, ok := pairs[chatType]
	return ok && p.HasSender(sender)
}

// Pairs lists the registered pairs in a stable order.
func Pairs() []Pair {
	return []Pair{pairs[ChatTypeDualPersona], pairs[ChatTypeStudyPair]}
}
