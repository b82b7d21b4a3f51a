package graph

import (
	"context"
	"fmt"
	"net/url"
)

// TranscriptHandle identifies one transcript of an online meeting without
// carrying its content.
type TranscriptHandle struct {
	ID        string
	MeetingID string
}

type transcriptList struct {
	Value []struct {
		ID string `json:"id"`
	} `json:"value"`
}

// ListTranscripts returns the transcripts recorded for an online meeting, in
// the provider's own order. No recency sort is applied; callers that want
// "the" transcript take the first entry.
func (c *Client) ListTranscripts(ctx context.Context, userID, meetingID string) ([]TranscriptHandle, error) {
	var list transcriptList
	path := fmt.Sprintf("/users/%s/onlineMeetings/%s/transcripts",
		url.PathEscape(userID), url.PathEscape(meetingID))
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("listing transcripts for meeting %s: %w", meetingID, err)
	}

	handles := make([]TranscriptHandle, len(list.Value))
	for i, t := range list.Value {
		handles[i] = TranscriptHandle{ID: t.ID, MeetingID: meetingID}
	}
	return handles, nil
}

// FetchTranscriptContent downloads a transcript's full text in VTT format,
// draining the streamed payload into a single string.
func (c *Client) FetchTranscriptContent(ctx context.Context, userID string, h TranscriptHandle) (string, error) {
	path := fmt.Sprintf("/users/%s/onlineMeetings/%s/transcripts/%s/content?$format=text/vtt",
		url.PathEscape(userID), url.PathEscape(h.MeetingID), url.PathEscape(h.ID))
	content, err := c.getRaw(ctx, path)
	if err != nil {
		return "", fmt.Errorf("fetching transcript %s content: %w", h.ID, err)
	}
	return content, nil
}
