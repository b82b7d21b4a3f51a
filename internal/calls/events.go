package calls

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind enumerates the lifecycle notifications the provider emits.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventConnected
	EventParticipantsUpdated
	EventRecordingStateChanged
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventParticipantsUpdated:
		return "participants-updated"
	case EventRecordingStateChanged:
		return "recording-state-changed"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is one provider lifecycle notification, normalized for the state
// machine. RecordingActive and RecordingID are meaningful only for
// EventRecordingStateChanged.
type Event struct {
	Kind            EventKind
	ConnectionID    string
	RecordingActive bool
	RecordingID     string
}

// wire shapes for the notification batches posted to the callback URL.

type notificationBatch struct {
	Value []notification `json:"value"`
}

type notification struct {
	ChangeType   string `json:"changeType"`
	Resource     string `json:"resource"`
	ResourceData struct {
		ID              string `json:"id"`
		State           string `json:"state"`
		RecordingStatus string `json:"recordingStatus"`
		RecordingID     string `json:"recordingId"`
	} `json:"resourceData"`
}

// ParseNotifications decodes a callback payload into normalized events.
// Notifications that describe states the machine does not track (for example
// "establishing") are dropped; a malformed payload is an error.
func ParseNotifications(body []byte) ([]Event, error) {
	var batch notificationBatch
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("parsing call notifications: %w", err)
	}

	var events []Event
	for _, n := range batch.Value {
		ev := Event{ConnectionID: n.ResourceData.ID}

		switch {
		case strings.Contains(n.Resource, "/participants"):
			ev.Kind = EventParticipantsUpdated
		case n.ResourceData.RecordingStatus != "":
			ev.Kind = EventRecordingStateChanged
			ev.RecordingActive = n.ResourceData.RecordingStatus == "recording"
			ev.RecordingID = n.ResourceData.RecordingID
		case n.ResourceData.State == "established":
			ev.Kind = EventConnected
		case n.ResourceData.State == "terminated" || n.ChangeType == "deleted":
			ev.Kind = EventDisconnected
		default:
			continue
		}

		if ev.ConnectionID == "" {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
