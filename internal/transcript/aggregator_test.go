package transcript

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/scriba/internal/graph"
)

// fakeCalendar scripts per-join-URL resolution and per-meeting transcripts.
type fakeCalendar struct {
	events       []graph.Event
	chatJoinURL  string
	chatErr      error
	resolve      map[string]graph.OnlineMeeting // join URL -> meeting
	resolveErr   map[string]error               // join URL -> forced error
	transcripts  map[string][]graph.TranscriptHandle
	contents     map[string]string // transcript id -> text
	listErr      error
	fetchErr     map[string]error
}

func (f *fakeCalendar) ListEvents(_ context.Context, _ string, _, _ time.Time) ([]graph.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeCalendar) GetEvent(_ context.Context, _, eventID string) (graph.Event, error) {
	for _, ev := range f.events {
		if ev.ID == eventID {
			return ev, nil
		}
	}
	return graph.Event{}, graph.ErrNotFound
}

func (f *fakeCalendar) ChatJoinURL(_ context.Context, _ string) (string, error) {
	return f.chatJoinURL, f.chatErr
}

func (f *fakeCalendar) ResolveOnlineMeeting(_ context.Context, _, joinURL string) (graph.OnlineMeeting, error) {
	if err, ok := f.resolveErr[joinURL]; ok {
		return graph.OnlineMeeting{}, err
	}
	om, ok := f.resolve[joinURL]
	if !ok {
		return graph.OnlineMeeting{}, graph.ErrNotFound
	}
	return om, nil
}

func (f *fakeCalendar) ListTranscripts(_ context.Context, _, meetingID string) ([]graph.TranscriptHandle, error) {
	return f.transcripts[meetingID], nil
}

func (f *fakeCalendar) FetchTranscriptContent(_ context.Context, _ string, h graph.TranscriptHandle) (string, error) {
	if err, ok := f.fetchErr[h.ID]; ok {
		return "", err
	}
	return f.contents[h.ID], nil
}

func onlineEvent(id, joinURL string) graph.Event {
	return graph.Event{ID: id, Subject: "meeting " + id, JoinURL: joinURL}
}

func TestBatchFaultIsolation(t *testing.T) {
	// Three online meetings; meeting 2's online-meeting resolution finds
	// nothing. The batch must return three aligned records with a sentinel in
	// the middle.
	cal := &fakeCalendar{
		events: []graph.Event{
			onlineEvent("ev-1", "url-1"),
			onlineEvent("ev-2", "url-2"),
			onlineEvent("ev-3", "url-3"),
		},
		resolve: map[string]graph.OnlineMeeting{
			"url-1": {ID: "om-1", JoinURL: "url-1"},
			"url-3": {ID: "om-3", JoinURL: "url-3"},
		},
		transcripts: map[string][]graph.TranscriptHandle{
			"om-1": {{ID: "tr-1", MeetingID: "om-1"}},
			"om-3": {{ID: "tr-3", MeetingID: "om-3"}},
		},
		contents: map[string]string{"tr-1": "first content", "tr-3": "third content"},
	}

	a := New(cal)
	meetings, records, err := a.CollectPastTranscripts(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("CollectPastTranscripts: %v", err)
	}
	if len(meetings) != 3 || len(records) != 3 {
		t.Fatalf("got %d meetings, %d records, want 3 and 3", len(meetings), len(records))
	}
	if !records[0].Available || records[0].Content != "first content" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Available {
		t.Errorf("records[1] should be unavailable, got %+v", records[1])
	}
	if records[1].Text() != NotAvailableNotice {
		t.Errorf("records[1].Text() = %q", records[1].Text())
	}
	if !records[2].Available || records[2].Content != "third content" {
		t.Errorf("records[2] = %+v", records[2])
	}
}

func TestBatchSkipsInPersonMeetings(t *testing.T) {
	cal := &fakeCalendar{
		events: []graph.Event{
			onlineEvent("ev-1", "url-1"),
			{ID: "ev-2", Subject: "lunch"}, // no join URL
		},
		resolve: map[string]graph.OnlineMeeting{
			"url-1": {ID: "om-1", JoinURL: "url-1"},
		},
		transcripts: map[string][]graph.TranscriptHandle{},
	}

	a := New(cal)
	meetings, records, err := a.CollectPastTranscripts(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("CollectPastTranscripts: %v", err)
	}
	if len(meetings) != 1 || meetings[0].ID != "ev-1" {
		t.Fatalf("meetings = %+v, want only ev-1", meetings)
	}
	// No transcripts listed: sentinel, not error.
	if records[0].Available {
		t.Errorf("records[0] = %+v, want unavailable", records[0])
	}
}

func TestBatchListingFailureAborts(t *testing.T) {
	cal := &fakeCalendar{listErr: errors.New("calendar denied")}

	a := New(cal)
	_, _, err := a.CollectPastTranscripts(context.Background(), "user-1", false)
	if err == nil || !strings.Contains(err.Error(), "calendar denied") {
		t.Errorf("err = %v, want listing failure", err)
	}
}

func TestBatchTransportFailureIsolated(t *testing.T) {
	cal := &fakeCalendar{
		events: []graph.Event{onlineEvent("ev-1", "url-1"), onlineEvent("ev-2", "url-2")},
		resolve: map[string]graph.OnlineMeeting{
			"url-1": {ID: "om-1", JoinURL: "url-1"},
			"url-2": {ID: "om-2", JoinURL: "url-2"},
		},
		resolveErr: map[string]error{"url-1": errors.New("transient 503")},
		transcripts: map[string][]graph.TranscriptHandle{
			"om-2": {{ID: "tr-2", MeetingID: "om-2"}},
		},
		contents: map[string]string{"tr-2": "ok"},
	}

	a := New(cal)
	_, records, err := a.CollectPastTranscripts(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("CollectPastTranscripts: %v", err)
	}
	if records[0].Available {
		t.Errorf("records[0] = %+v, want unavailable after transport failure", records[0])
	}
	if !records[1].Available {
		t.Errorf("records[1] = %+v, want available", records[1])
	}
}

func TestBatchConcurrentPreservesOrder(t *testing.T) {
	cal := &fakeCalendar{
		events: []graph.Event{
			onlineEvent("ev-1", "url-1"),
			onlineEvent("ev-2", "url-2"),
			onlineEvent("ev-3", "url-3"),
		},
		resolve: map[string]graph.OnlineMeeting{
			"url-1": {ID: "om-1"}, "url-2": {ID: "om-2"}, "url-3": {ID: "om-3"},
		},
		transcripts: map[string][]graph.TranscriptHandle{
			"om-1": {{ID: "tr-1", MeetingID: "om-1"}},
			"om-2": {{ID: "tr-2", MeetingID: "om-2"}},
			"om-3": {{ID: "tr-3", MeetingID: "om-3"}},
		},
		contents: map[string]string{"tr-1": "one", "tr-2": "two", "tr-3": "three"},
	}

	a := New(cal, WithConcurrency(3))
	_, records, err := a.CollectPastTranscripts(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("CollectPastTranscripts: %v", err)
	}
	want := []string{"one", "two", "three"}
	for i, w := range want {
		if records[i].Content != w {
			t.Errorf("records[%d].Content = %q, want %q", i, records[i].Content, w)
		}
	}
}

func TestCurrentMeetingTwoHop(t *testing.T) {
	cal := &fakeCalendar{
		chatJoinURL: "url-1",
		events: []graph.Event{
			onlineEvent("ev-other", "url-other"),
			onlineEvent("ev-1", "url-1"),
		},
		resolve: map[string]graph.OnlineMeeting{
			"url-1": {ID: "om-1", JoinURL: "url-1"},
		},
	}

	a := New(cal)
	ev, err := a.CurrentMeeting(context.Background(), "user-1", "chat-1")
	if err != nil {
		t.Fatalf("CurrentMeeting: %v", err)
	}
	if ev.ID != "ev-1" {
		t.Errorf("ev.ID = %q, want ev-1", ev.ID)
	}
}

func TestCurrentMeetingMissesAreTerminal(t *testing.T) {
	tests := []struct {
		name string
		cal  *fakeCalendar
	}{
		{"chat lookup fails", &fakeCalendar{chatErr: errors.New("chat gone")}},
		{"online meeting unresolved", &fakeCalendar{chatJoinURL: "url-x"}},
		{"no matching event", &fakeCalendar{
			chatJoinURL: "url-1",
			resolve:     map[string]graph.OnlineMeeting{"url-1": {ID: "om-1", JoinURL: "url-1"}},
			events:      []graph.Event{onlineEvent("ev-z", "url-z")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.cal)
			if _, err := a.CurrentMeeting(context.Background(), "user-1", "chat-1"); err == nil {
				t.Error("expected terminal error")
			}
		})
	}
}

func TestCurrentTranscriptAbsenceIsSentinel(t *testing.T) {
	cal := &fakeCalendar{
		chatJoinURL: "url-1",
		resolve:     map[string]graph.OnlineMeeting{"url-1": {ID: "om-1", JoinURL: "url-1"}},
		transcripts: map[string][]graph.TranscriptHandle{}, // none recorded
	}

	a := New(cal)
	rec, err := a.CurrentTranscript(context.Background(), "user-1", "chat-1")
	if err != nil {
		t.Fatalf("CurrentTranscript: %v", err)
	}
	if rec.Available {
		t.Errorf("rec = %+v, want unavailable", rec)
	}
}
