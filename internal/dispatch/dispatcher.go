package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/scriba/internal/graph"
	"github.com/kalambet/scriba/internal/lifecycle"
	"github.com/kalambet/scriba/internal/state"
	"github.com/kalambet/scriba/internal/storage"
	"github.com/kalambet/scriba/internal/transcript"
)

// Calendar is the slice of the graph client the dispatcher drives directly.
type Calendar interface {
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]graph.Event, error)
	ChatJoinURL(ctx context.Context, chatID string) (string, error)
	PatchEventBody(ctx context.Context, userID, eventID, text string) error
	PatchEventAttendees(ctx context.Context, userID, eventID string, attendees []graph.Attendee) error
}

// Aggregator assembles meeting and transcript context.
type Aggregator interface {
	CurrentMeeting(ctx context.Context, userID, chatID string) (graph.Event, error)
	BuildSummarizeBundle(ctx context.Context, userID, chatID string) (transcript.Bundle, error)
	BuildAnalyzeBundle(ctx context.Context, userID, eventID string) (transcript.Bundle, error)
}

// Summarizer produces user-facing text from context bundles. Both operations
// degrade internally and never fail.
type Summarizer interface {
	Summarize(ctx context.Context, b transcript.Bundle) string
	Analyze(ctx context.Context, b transcript.Bundle) string
}

// Lifecycle issues call commands with precondition checks.
type Lifecycle interface {
	RequestJoin(ctx context.Context, conversationID, joinURL string) (string, error)
	RequestStartRecording(ctx context.Context, conversationID string) (string, error)
	RequestStopRecording(ctx context.Context, conversationID string) error
	RequestHangUp(ctx context.Context, conversationID string) error
}

// InteractionLog persists dispatched interactions for the management API.
// A nil log disables recording.
type InteractionLog interface {
	SaveInteraction(ctx context.Context, in storage.Interaction) error
}

// Message is one inbound chat activity. Value carries structured input echoed
// back from a choice prompt or form.
type Message struct {
	ConversationID string            `json:"conversationId"`
	UserID         string            `json:"userId"`
	Text           string            `json:"text"`
	Value          map[string]string `json:"value,omitempty"`
}

const noMeetingsReply = "you have no meetings scheduled in the next 7 days"

// Dispatcher routes messages to handlers. One handler runs per message.
type Dispatcher struct {
	cal    Calendar
	agg    Aggregator
	sum    Summarizer
	life   Lifecycle
	store  state.Store
	ilog   InteractionLog
	logger *slog.Logger

	botName    string
	botAddress string

	startedAt time.Time
}

func New(cal Calendar, agg Aggregator, sum Summarizer, life Lifecycle, store state.Store, ilog InteractionLog, botName, botAddress string) *Dispatcher {
	return &Dispatcher{
		cal:        cal,
		agg:        agg,
		sum:        sum,
		life:       life,
		store:      store,
		ilog:       ilog,
		logger:     slog.Default(),
		botName:    botName,
		botAddress: botAddress,
		startedAt:  time.Now(),
	}
}

// OnMessage handles one inbound activity and returns the outbound replies.
// Structured payloads (choice selections, form submissions) take priority
// over text triggers.
func (d *Dispatcher) OnMessage(ctx context.Context, msg Message) []Reply {
	if len(msg.Value) > 0 {
		return d.handlePayload(ctx, msg)
	}

	text := stripMentions(msg.Text)
	intent := Match(text)

	var replies []Reply
	switch intent {
	case IntentPlan:
		replies = d.handlePlan(ctx, msg)
	case IntentSummarize:
		replies = d.handleSummarize(ctx, msg)
	case IntentAnalyze:
		replies = d.handleAnalyze(ctx, msg)
	case IntentJoin:
		replies = d.handleJoin(ctx, msg)
	case IntentStartRecording:
		replies = d.handleStartRecording(ctx, msg)
	case IntentStopRecording:
		replies = d.handleStopRecording(ctx, msg)
	case IntentHangUp:
		replies = d.handleHangUp(ctx, msg)
	case IntentInvite:
		replies = d.handleInvite(ctx, msg)
	case IntentCount:
		replies = d.handleCount(msg)
	case IntentState:
		replies = d.handleState(msg)
	case IntentDiag:
		replies = d.handleDiag(msg)
	case IntentRuntime:
		replies = d.handleRuntime()
	case IntentReset:
		replies = d.handleReset(msg)
	default:
		replies = d.handleFallback(msg, text)
	}

	d.record(ctx, msg, intent, text, replies)
	return replies
}

func (d *Dispatcher) record(ctx context.Context, msg Message, intent Intent, text string, replies []Reply) {
	if d.ilog == nil {
		return
	}
	var response string
	if len(replies) > 0 {
		response = replies[0].Text
	}
	in := storage.Interaction{
		ID:             uuid.NewString(),
		ConversationID: msg.ConversationID,
		Intent:         intent.String(),
		UserText:       text,
		Response:       response,
		CreatedAt:      time.Now().UTC(),
	}
	if err := d.ilog.SaveInteraction(ctx, in); err != nil {
		d.logger.Warn("recording interaction failed", "conversation", msg.ConversationID, "error", err)
	}
}

// handlePayload resumes the planning flow: a meeting selection yields the
// details form, a form submission patches the event body.
func (d *Dispatcher) handlePayload(ctx context.Context, msg Message) []Reply {
	if eventID, ok := msg.Value["selectedMeeting"]; ok {
		return []Reply{{
			Text: "fill in the meeting details:",
			Form: meetingDetailsForm(eventID),
		}}
	}

	if eventID, ok := msg.Value["updateMeetingDetails"]; ok {
		body := fmt.Sprintf("Objective: %s\r\nResponsible: %s\r\nDefinition of done: %s",
			msg.Value["objective"], msg.Value["responsible"], msg.Value["definition"])
		if err := d.cal.PatchEventBody(ctx, msg.UserID, eventID, body); err != nil {
			d.logger.Error("updating meeting details failed", "event", eventID, "error", err)
			return textReply("could not update the meeting details. Please try again...")
		}
		return textReply("meeting details updated.")
	}

	d.logger.Warn("unrecognized interaction payload", "conversation", msg.ConversationID)
	return textReply("sorry, I did not understand that interaction.")
}

func (d *Dispatcher) handlePlan(ctx context.Context, msg Message) []Reply {
	now := time.Now()
	events, err := d.cal.ListEvents(ctx, msg.UserID, now, now.Add(7*24*time.Hour))
	if err != nil {
		d.logger.Error("listing meetings for planning failed", "user", msg.UserID, "error", err)
		return textReply("could not fetch your meetings. Please try again...")
	}
	if len(events) == 0 {
		return textReply(noMeetingsReply)
	}
	return []Reply{{
		Text:    "which meeting would you like to plan?",
		Choices: meetingChoices(events),
	}}
}

func (d *Dispatcher) handleSummarize(ctx context.Context, msg Message) []Reply {
	bundle, err := d.agg.BuildSummarizeBundle(ctx, msg.UserID, msg.ConversationID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return textReply("could not find a meeting for this conversation.")
		}
		d.logger.Error("building summarize context failed", "conversation", msg.ConversationID, "error", err)
		return textReply("sorry, something went wrong while processing the request. Please try again...")
	}
	return textReply(d.sum.Summarize(ctx, bundle))
}

func (d *Dispatcher) handleAnalyze(ctx context.Context, msg Message) []Reply {
	meeting, err := d.agg.CurrentMeeting(ctx, msg.UserID, msg.ConversationID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return textReply("could not find a meeting for this conversation.")
		}
		d.logger.Error("resolving meeting for analysis failed", "conversation", msg.ConversationID, "error", err)
		return textReply("sorry, something went wrong while processing the request. Please try again...")
	}

	bundle, err := d.agg.BuildAnalyzeBundle(ctx, msg.UserID, meeting.ID)
	if err != nil {
		d.logger.Error("building analysis context failed", "conversation", msg.ConversationID, "error", err)
		return textReply("sorry, something went wrong while processing the request. Please try again...")
	}
	return textReply(d.sum.Analyze(ctx, bundle))
}

func (d *Dispatcher) handleJoin(ctx context.Context, msg Message) []Reply {
	joinURL, err := d.cal.ChatJoinURL(ctx, msg.ConversationID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return textReply("this conversation has no joinable meeting.")
		}
		d.logger.Error("resolving join URL failed", "conversation", msg.ConversationID, "error", err)
		return textReply("could not resolve the meeting to join. Please try again...")
	}

	if _, err := d.life.RequestJoin(ctx, msg.ConversationID, joinURL); err != nil {
		return textReply(lifecycleReply(err, "could not join the meeting. Please try again..."))
	}
	return textReply("joining the meeting.")
}

func (d *Dispatcher) handleStartRecording(ctx context.Context, msg Message) []Reply {
	if _, err := d.life.RequestStartRecording(ctx, msg.ConversationID); err != nil {
		return textReply(lifecycleReply(err, "could not start recording. Please try again..."))
	}
	return textReply("recording started.")
}

func (d *Dispatcher) handleStopRecording(ctx context.Context, msg Message) []Reply {
	if err := d.life.RequestStopRecording(ctx, msg.ConversationID); err != nil {
		return textReply(lifecycleReply(err, "could not stop recording. Please try again..."))
	}
	return textReply("recording stopped.")
}

func (d *Dispatcher) handleHangUp(ctx context.Context, msg Message) []Reply {
	if err := d.life.RequestHangUp(ctx, msg.ConversationID); err != nil {
		return textReply(lifecycleReply(err, "could not hang up the call. Please try again..."))
	}
	return textReply("call ended.")
}

// lifecycleReply maps precondition failures to direct user messages and
// everything else to a generic retry message.
func lifecycleReply(err error, fallback string) string {
	switch {
	case errors.Is(err, lifecycle.ErrCallInProgress):
		return "a call is already in progress in this conversation."
	case errors.Is(err, lifecycle.ErrNoActiveCall):
		return "there is no active call in this conversation."
	case errors.Is(err, lifecycle.ErrRecordingInProgress):
		return "a recording is already in progress."
	case errors.Is(err, lifecycle.ErrNoActiveRecording):
		return "there is no active recording to stop."
	default:
		slog.Error("call lifecycle command failed", "error", err)
		return fallback
	}
}

func (d *Dispatcher) handleInvite(ctx context.Context, msg Message) []Reply {
	meeting, err := d.agg.CurrentMeeting(ctx, msg.UserID, msg.ConversationID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return textReply("could not find a meeting for this conversation.")
		}
		d.logger.Error("resolving meeting for invite failed", "conversation", msg.ConversationID, "error", err)
		return textReply("could not resolve the meeting. Please try again...")
	}

	for _, a := range meeting.Attendees {
		if strings.EqualFold(a.Address, d.botAddress) {
			return textReply(fmt.Sprintf("%s is already invited to %q.", d.botName, meeting.Subject))
		}
	}

	attendees := append(meeting.Attendees, graph.Attendee{
		Name:    d.botName,
		Address: d.botAddress,
		Type:    "optional",
	})
	if err := d.cal.PatchEventAttendees(ctx, msg.UserID, meeting.ID, attendees); err != nil {
		d.logger.Error("inviting bot failed", "event", meeting.ID, "error", err)
		return textReply("could not update the meeting attendees. Please try again...")
	}
	return textReply(fmt.Sprintf("%s was invited to %q.", d.botName, meeting.Subject))
}

func (d *Dispatcher) handleCount(msg Message) []Reply {
	st := d.store.Get(msg.ConversationID)
	return textReply(fmt.Sprintf("interaction count: %d", st.InteractionCount))
}

func (d *Dispatcher) handleState(msg Message) []Reply {
	st := d.store.Get(msg.ConversationID)
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return textReply("could not render conversation state.")
	}
	return textReply(string(raw))
}

func (d *Dispatcher) handleDiag(msg Message) []Reply {
	st := d.store.Get(msg.ConversationID)
	return textReply(fmt.Sprintf(
		"conversation: %s\ninteractions: %d\nin call: %t\nrecording: %t\nuptime: %s",
		st.ConversationID, st.InteractionCount, st.InCall(), st.Recording(),
		time.Since(d.startedAt).Round(time.Second)))
}

func (d *Dispatcher) handleRuntime() []Reply {
	return textReply(fmt.Sprintf("go: %s\nos/arch: %s/%s\ngoroutines: %d",
		runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumGoroutine()))
}

func (d *Dispatcher) handleReset(msg Message) []Reply {
	d.store.Delete(msg.ConversationID)
	return textReply("conversation state reset.")
}

// handleFallback is the only path that touches the interaction counter.
func (d *Dispatcher) handleFallback(msg Message, text string) []Reply {
	st := d.store.Get(msg.ConversationID)
	st.InteractionCount++
	d.store.Put(st)
	return textReply(fmt.Sprintf("[%d] you said: %s", st.InteractionCount, text))
}
