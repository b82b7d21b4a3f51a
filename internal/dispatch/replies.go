package dispatch

import (
	"regexp"
	"strings"

	"github.com/kalambet/scriba/internal/graph"
)

// Reply is one outbound message. Text is always set; Choices or Form are set
// when the handler needs structured input back, and the hosting transport
// decides how to render them.
type Reply struct {
	Text    string        `json:"text"`
	Choices *ChoicePrompt `json:"choices,omitempty"`
	Form    *FormPrompt   `json:"form,omitempty"`
}

// ChoicePrompt asks the user to pick one option, echoed back through the
// interaction payload under Name.
type ChoicePrompt struct {
	Name    string         `json:"name"`
	Options []ChoiceOption `json:"options"`
}

type ChoiceOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormPrompt asks the user to fill a small set of free-text fields.
type FormPrompt struct {
	Name   string      `json:"name"`
	Fields []FormField `json:"fields"`
}

type FormField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func textReply(text string) []Reply {
	return []Reply{{Text: text}}
}

var mentionTag = regexp.MustCompile(`<at>.*?</at>`)

// stripMentions removes chat @-mention markup so trigger matching sees only
// what the user typed.
func stripMentions(text string) string {
	return strings.TrimSpace(mentionTag.ReplaceAllString(text, ""))
}

func meetingChoices(events []graph.Event) *ChoicePrompt {
	opts := make([]ChoiceOption, len(events))
	for i, ev := range events {
		opts[i] = ChoiceOption{
			Label: ev.Subject + " (" + ev.Start.Format("Mon Jan 2 15:04") + ")",
			Value: ev.ID,
		}
	}
	return &ChoicePrompt{Name: "selectedMeeting", Options: opts}
}

func meetingDetailsForm(eventID string) *FormPrompt {
	return &FormPrompt{
		Name: "updateMeetingDetails:" + eventID,
		Fields: []FormField{
			{Name: "objective", Label: "Meeting objective"},
			{Name: "responsible", Label: "Responsible participants"},
			{Name: "definition", Label: "Definition of done"},
		},
	}
}
