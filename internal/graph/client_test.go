package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func timeMust(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return parsed
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL(StaticToken("test-token"), srv.URL)
}

func TestListEventsParsesWire(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/users/user-1/events") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[
			{"id":"ev-1","subject":"Weekly sync","bodyPreview":"agenda",
			 "start":{"dateTime":"2026-09-01T10:00:00.0000000","timeZone":"UTC"},
			 "end":{"dateTime":"2026-09-01T11:00:00.0000000","timeZone":"UTC"},
			 "onlineMeeting":{"joinUrl":"https://teams.example/join/1"},
			 "attendees":[{"type":"required","emailAddress":{"name":"Ana","address":"ana@example.com"}}]},
			{"id":"ev-2","subject":"Lunch","bodyPreview":"",
			 "start":{"dateTime":"2026-09-01T12:00:00","timeZone":"UTC"},
			 "end":{"dateTime":"2026-09-01T13:00:00","timeZone":"UTC"}}
		]}`))
	})

	events, err := c.ListEvents(context.Background(), "user-1", timeMust(t, "2026-09-01T00:00:00Z"), timeMust(t, "2026-09-08T00:00:00Z"))
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].JoinURL != "https://teams.example/join/1" {
		t.Errorf("events[0].JoinURL = %q", events[0].JoinURL)
	}
	if events[0].Start.Hour() != 10 {
		t.Errorf("events[0].Start = %v", events[0].Start)
	}
	if len(events[0].Attendees) != 1 || events[0].Attendees[0].Address != "ana@example.com" {
		t.Errorf("events[0].Attendees = %+v", events[0].Attendees)
	}
	if events[1].JoinURL != "" {
		t.Errorf("in-person event has JoinURL %q", events[1].JoinURL)
	}
}

func TestResolveOnlineMeetingNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	})

	_, err := c.ResolveOnlineMeeting(context.Background(), "user-1", "https://teams.example/join/x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestChatJoinURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/chats/chat-1") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"onlineMeetingInfo":{"joinWebUrl":"https://teams.example/join/1"}}`))
	})

	got, err := c.ChatJoinURL(context.Background(), "chat-1")
	if err != nil {
		t.Fatalf("ChatJoinURL: %v", err)
	}
	if got != "https://teams.example/join/1" {
		t.Errorf("join URL = %q", got)
	}
}

func TestChatJoinURLMissingMeetingInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"onlineMeetingInfo":{}}`))
	})

	_, err := c.ChatJoinURL(context.Background(), "chat-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchTranscriptContent(t *testing.T) {
	const vtt = "WEBVTT\n\n00:01.000 --> 00:04.000\nHello everyone."

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/transcripts/tr-1/content") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(vtt))
	})

	got, err := c.FetchTranscriptContent(context.Background(), "user-1", TranscriptHandle{ID: "tr-1", MeetingID: "om-1"})
	if err != nil {
		t.Fatalf("FetchTranscriptContent: %v", err)
	}
	if got != vtt {
		t.Errorf("content = %q", got)
	}
}

func TestPatchEventBody(t *testing.T) {
	var seen map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&seen)
		w.WriteHeader(http.StatusOK)
	})

	if err := c.PatchEventBody(context.Background(), "user-1", "ev-1", "Subject: planning"); err != nil {
		t.Fatalf("PatchEventBody: %v", err)
	}
	body, _ := seen["body"].(map[string]any)
	if body["content"] != "Subject: planning" || body["contentType"] != "TEXT" {
		t.Errorf("patched body = %+v", seen)
	}
}

func TestGetEventNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetEvent(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
