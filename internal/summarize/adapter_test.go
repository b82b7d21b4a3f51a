package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/scriba/internal/graph"
	"github.com/kalambet/scriba/internal/transcript"
)

type spyGenerator struct {
	calls  int
	prompt string
	text   string
	err    error
}

func (s *spyGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.text, s.err
}

func testMeeting(id, subject string) graph.Event {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return graph.Event{
		ID:      id,
		Subject: subject,
		Start:   start,
		End:     start.Add(time.Hour),
	}
}

func TestSummarizeSkipsGeneratorWhenTranscriptUnavailable(t *testing.T) {
	spy := &spyGenerator{text: "should not appear"}
	a := NewAdapter(spy)

	b := transcript.Bundle{
		CurrentMeeting:    testMeeting("m1", "Standup"),
		CurrentTranscript: transcript.UnavailableRecord("m1"),
	}

	got := a.Summarize(context.Background(), b)
	if got != UnavailableMessage {
		t.Fatalf("got %q, want %q", got, UnavailableMessage)
	}
	if spy.calls != 0 {
		t.Fatalf("generator called %d times, want 0", spy.calls)
	}
}

func TestSummarizeBuildsPromptFromBundle(t *testing.T) {
	spy := &spyGenerator{text: "a fine summary"}
	a := NewAdapter(spy)

	b := transcript.Bundle{
		CurrentMeeting:    testMeeting("m1", "Quarterly Review"),
		CurrentTranscript: transcript.AvailableRecord("m1", "alice: we shipped it"),
		PastMeetings:      []graph.Event{testMeeting("m0", "Kickoff")},
		PastTranscripts:   []transcript.Record{transcript.UnavailableRecord("m0")},
	}

	got := a.Summarize(context.Background(), b)
	if got != "a fine summary" {
		t.Fatalf("got %q", got)
	}
	if spy.calls != 1 {
		t.Fatalf("generator called %d times, want 1", spy.calls)
	}
	for _, want := range []string{
		"Quarterly Review",
		"alice: we shipped it",
		"Kickoff",
		transcript.NotAvailableNotice,
	} {
		if !strings.Contains(spy.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarizeDegradesToApologyOnGeneratorError(t *testing.T) {
	spy := &spyGenerator{err: errors.New("quota exceeded")}
	a := NewAdapter(spy)

	b := transcript.Bundle{
		CurrentMeeting:    testMeeting("m1", "Standup"),
		CurrentTranscript: transcript.AvailableRecord("m1", "hello"),
	}

	if got := a.Summarize(context.Background(), b); got != ApologyMessage {
		t.Fatalf("got %q, want apology", got)
	}
}

func TestAnalyzeRequiresSelectedMeeting(t *testing.T) {
	spy := &spyGenerator{}
	a := NewAdapter(spy)

	got := a.Analyze(context.Background(), transcript.Bundle{})
	if got != NoMeetingMessage {
		t.Fatalf("got %q, want %q", got, NoMeetingMessage)
	}
	if spy.calls != 0 {
		t.Fatalf("generator called %d times, want 0", spy.calls)
	}
}

func TestAnalyzeIncludesHistory(t *testing.T) {
	spy := &spyGenerator{text: "insightful"}
	a := NewAdapter(spy)

	b := transcript.Bundle{
		CurrentMeeting:  testMeeting("m2", "Planning"),
		PastMeetings:    []graph.Event{testMeeting("m0", "Retro")},
		PastTranscripts: []transcript.Record{transcript.AvailableRecord("m0", "bob: action items")},
	}

	if got := a.Analyze(context.Background(), b); got != "insightful" {
		t.Fatalf("got %q", got)
	}
	for _, want := range []string{"Planning", "Retro", "bob: action items"} {
		if !strings.Contains(spy.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
