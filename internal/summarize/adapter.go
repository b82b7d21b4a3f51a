package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/scriba/internal/graph"
	"github.com/kalambet/scriba/internal/transcript"
)

// UnavailableMessage is returned without calling the generator when the
// current transcript is absent.
const UnavailableMessage = "could not get the transcript for this meeting."

// NoMeetingMessage is returned without calling the generator when no meeting
// was selected for analysis.
const NoMeetingMessage = "could not determine which meeting to analyze."

// ApologyMessage is the user-safe degradation for any generator failure.
// Adapter operations never propagate errors to the dispatcher.
const ApologyMessage = "sorry, something went wrong while processing the request. Please try again..."

// Adapter turns context bundles into natural-language text through the
// generation capability.
type Adapter struct {
	gen    Generator
	logger *slog.Logger
}

func NewAdapter(gen Generator) *Adapter {
	return &Adapter{gen: gen, logger: slog.Default()}
}

// Summarize produces a summary of the bundle's current meeting. When the
// transcript is the not-available sentinel it short-circuits to the fixed
// unavailable message, skipping the external call entirely.
func (a *Adapter) Summarize(ctx context.Context, b transcript.Bundle) string {
	if !b.CurrentTranscript.Available {
		return UnavailableMessage
	}

	var sb strings.Builder
	sb.WriteString(summarizePreamble)
	sb.WriteString("\n\ncontext:\n\ntranscript:\n")
	sb.WriteString(b.CurrentTranscript.Text())
	sb.WriteString("\n\nmeeting data:\n")
	writeMeeting(&sb, b.CurrentMeeting)
	sb.WriteString("\nuser meetings:\n")
	writeMeetings(&sb, b.PastMeetings)
	sb.WriteString("\npast transcripts:\n")
	writeRecords(&sb, b.PastTranscripts)

	text, err := a.gen.Generate(ctx, sb.String())
	if err != nil {
		a.logger.Error("summarize generation failed", "meeting", b.CurrentMeeting.ID, "error", err)
		return ApologyMessage
	}
	return text
}

// Analyze cross-references the selected meeting against the user's history.
// Short-circuits when no meeting was selected.
func (a *Adapter) Analyze(ctx context.Context, b transcript.Bundle) string {
	if b.CurrentMeeting.ID == "" {
		return NoMeetingMessage
	}

	var sb strings.Builder
	sb.WriteString(analyzePreamble)
	sb.WriteString("\n\ncontext:\n\nselected meeting:\n")
	writeMeeting(&sb, b.CurrentMeeting)
	sb.WriteString("\nmeetings:\n")
	writeMeetings(&sb, b.PastMeetings)
	sb.WriteString("\npast transcripts:\n")
	writeRecords(&sb, b.PastTranscripts)

	text, err := a.gen.Generate(ctx, sb.String())
	if err != nil {
		a.logger.Error("analyze generation failed", "meeting", b.CurrentMeeting.ID, "error", err)
		return ApologyMessage
	}
	return text
}

func writeMeeting(sb *strings.Builder, ev graph.Event) {
	fmt.Fprintf(sb, "- %s (%s to %s)\n", ev.Subject,
		ev.Start.Format("2006-01-02 15:04"), ev.End.Format("15:04"))
	if preview := graph.FlattenHTML(ev.BodyPreview); preview != "" {
		fmt.Fprintf(sb, "  %s\n", preview)
	}
}

func writeMeetings(sb *strings.Builder, events []graph.Event) {
	for _, ev := range events {
		writeMeeting(sb, ev)
	}
}

func writeRecords(sb *strings.Builder, records []transcript.Record) {
	for _, r := range records {
		fmt.Fprintf(sb, "- %s\n", r.Text())
	}
}
