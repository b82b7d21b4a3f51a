package graph

import (
	"context"
	"fmt"
	"net/url"
)

// OnlineMeeting is the provider-side live-call object, distinct from the
// calendar event that scheduled it. The two are correlated via the join URL.
type OnlineMeeting struct {
	ID      string
	JoinURL string
}

type onlineMeetingList struct {
	Value []struct {
		ID         string `json:"id"`
		JoinWebURL string `json:"joinWebUrl"`
	} `json:"value"`
}

// ChatJoinURL resolves a chat/session id to the join URL of the online
// meeting backing it. Conversations started inside a meeting carry the
// meeting's chat id, which is the only correlation handle the bot receives.
func (c *Client) ChatJoinURL(ctx context.Context, chatID string) (string, error) {
	var chat struct {
		OnlineMeetingInfo struct {
			JoinWebURL string `json:"joinWebUrl"`
		} `json:"onlineMeetingInfo"`
	}
	path := fmt.Sprintf("/chats/%s?$select=onlineMeetingInfo", url.PathEscape(chatID))
	if err := c.getJSON(ctx, path, &chat); err != nil {
		return "", fmt.Errorf("getting chat %s: %w", chatID, err)
	}
	if chat.OnlineMeetingInfo.JoinWebURL == "" {
		return "", fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	return chat.OnlineMeetingInfo.JoinWebURL, nil
}

// ResolveOnlineMeeting looks up the user's online meeting whose join URL
// exactly matches joinURL. Returns ErrNotFound when the filter matches
// nothing.
func (c *Client) ResolveOnlineMeeting(ctx context.Context, userID, joinURL string) (OnlineMeeting, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("JoinWebUrl eq '%s'", joinURL))

	var list onlineMeetingList
	path := fmt.Sprintf("/users/%s/onlineMeetings?%s", url.PathEscape(userID), q.Encode())
	if err := c.getJSON(ctx, path, &list); err != nil {
		return OnlineMeeting{}, fmt.Errorf("resolving online meeting: %w", err)
	}
	if len(list.Value) == 0 {
		return OnlineMeeting{}, ErrNotFound
	}
	return OnlineMeeting{ID: list.Value[0].ID, JoinURL: list.Value[0].JoinWebURL}, nil
}
