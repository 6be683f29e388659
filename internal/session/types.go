package session

import "mealchat/internal/mealapi"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry in the log. Messages are never edited or removed.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// State is the session state owned by a Controller.
type State struct {
	Messages   []Message
	InputValue string
	IsLoading  bool
}

func (s State) clone() State {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// Outcome is the result of one outbound call: a suggestion, or an error.
type Outcome struct {
	Suggestion mealapi.Suggestion
	Err        error
}

// Succeeded wraps a parsed suggestion.
func Succeeded(s mealapi.Suggestion) Outcome {
	return Outcome{Suggestion: s}
}

// Failed wraps any failure. Transport, status and payload errors are not
// distinguished past this point.
func Failed(err error) Outcome {
	return Outcome{Err: err}
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// BotText is the text of the bot message this outcome produces.
func (o Outcome) BotText() string {
	if o.Err != nil {
		return FallbackText
	}
	return o.Suggestion.Text()
}
