package graph

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Attendee is one calendar event participant.
type Attendee struct {
	Name    string
	Address string
	Type    string
}

// Event is an immutable snapshot of one calendar event. Fetched per request,
// never persisted.
type Event struct {
	ID          string
	Subject     string
	Start       time.Time
	End         time.Time
	JoinURL     string // empty for in-person meetings
	BodyPreview string
	Attendees   []Attendee
}

// wire shapes for /events responses.

type eventList struct {
	Value []eventWire `json:"value"`
}

type eventWire struct {
	ID            string        `json:"id"`
	Subject       string        `json:"subject"`
	Start         dateTimeZone  `json:"start"`
	End           dateTimeZone  `json:"end"`
	BodyPreview   string        `json:"bodyPreview"`
	OnlineMeeting *joinInfo     `json:"onlineMeeting"`
	Attendees     []attendeeWire `json:"attendees"`
}

type dateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type joinInfo struct {
	JoinURL string `json:"joinUrl"`
}

type attendeeWire struct {
	Type         string `json:"type"`
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

func (w eventWire) toEvent() Event {
	e := Event{
		ID:          w.ID,
		Subject:     w.Subject,
		Start:       parseGraphTime(w.Start),
		End:         parseGraphTime(w.End),
		BodyPreview: w.BodyPreview,
	}
	if w.OnlineMeeting != nil {
		e.JoinURL = w.OnlineMeeting.JoinURL
	}
	for _, a := range w.Attendees {
		e.Attendees = append(e.Attendees, Attendee{
			Name:    a.EmailAddress.Name,
			Address: a.EmailAddress.Address,
			Type:    a.Type,
		})
	}
	return e
}

// Graph emits event times without an offset, qualified by a separate
// time zone name. The bot only compares times relative to now, so the
// zone is resolved best-effort and falls back to UTC.
func parseGraphTime(d dateTimeZone) time.Time {
	loc := time.UTC
	if d.TimeZone != "" {
		if l, err := time.LoadLocation(d.TimeZone); err == nil {
			loc = l
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.0000000", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, d.DateTime, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ListEvents returns the user's calendar events ordered by start time. A zero
// from/to pair means an unbounded range (all events Graph will page out).
func (c *Client) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("$orderby", "start/dateTime ASC")
	q.Set("$select", "subject,organizer,start,end,bodyPreview,onlineMeeting,attendees")
	if !from.IsZero() && !to.IsZero() {
		q.Set("$filter", fmt.Sprintf("start/dateTime ge '%s' and end/dateTime le '%s'",
			from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339)))
	}

	var list eventList
	path := fmt.Sprintf("/users/%s/events?%s", url.PathEscape(userID), q.Encode())
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("listing events for user %s: %w", userID, err)
	}

	events := make([]Event, len(list.Value))
	for i, w := range list.Value {
		events[i] = w.toEvent()
	}
	return events, nil
}

// GetEvent fetches a single calendar event.
func (c *Client) GetEvent(ctx context.Context, userID, eventID string) (Event, error) {
	var w eventWire
	path := fmt.Sprintf("/users/%s/events/%s", url.PathEscape(userID), url.PathEscape(eventID))
	if err := c.getJSON(ctx, path, &w); err != nil {
		return Event{}, fmt.Errorf("getting event %s: %w", eventID, err)
	}
	return w.toEvent(), nil
}

// PatchEventBody replaces the event body with plain text.
func (c *Client) PatchEventBody(ctx context.Context, userID, eventID, text string) error {
	body := map[string]any{
		"body": map[string]string{
			"contentType": "TEXT",
			"content":     text,
		},
	}
	path := fmt.Sprintf("/users/%s/events/%s", url.PathEscape(userID), url.PathEscape(eventID))
	if err := c.patch(ctx, path, body); err != nil {
		return fmt.Errorf("patching event %s body: %w", eventID, err)
	}
	return nil
}

// PatchEventAttendees replaces the event attendee list.
func (c *Client) PatchEventAttendees(ctx context.Context, userID, eventID string, attendees []Attendee) error {
	wire := make([]map[string]any, len(attendees))
	for i, a := range attendees {
		wire[i] = map[string]any{
			"type": a.Type,
			"emailAddress": map[string]string{
				"name":    a.Name,
				"address": a.Address,
			},
		}
	}
	body := map[string]any{"attendees": wire}
	path := fmt.Sprintf("/users/%s/events/%s", url.PathEscape(userID), url.PathEscape(eventID))
	if err := c.patch(ctx, path, body); err != nil {
		return fmt.Errorf("patching event %s attendees: %w", eventID, err)
	}
	return nil
}
