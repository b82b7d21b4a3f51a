// Package transcript assembles the context bundle the generation adapter
// consumes: current meeting, current transcript, historical meetings, and
// historical transcripts, tolerating missing data at every lookup.
package transcript

import "github.com/kalambet/scriba/internal/graph"

// NotAvailableNotice is the wording carried into prompts and user messages
// when a meeting was located but no transcript exists for it. Distinguished
// from a fetch failure, which is an error, not a record.
const NotAvailableNotice = "meeting found, but there are no transcripts available."

// Record is one meeting's transcript lookup result: either the full text or
// the distinguished not-available marker.
type Record struct {
	MeetingID string
	Content   string
	Available bool
}

// Available wraps transcript text for a meeting.
func AvailableRecord(meetingID, content string) Record {
	return Record{MeetingID: meetingID, Content: content, Available: true}
}

// UnavailableRecord marks a meeting whose transcript lookup found nothing.
func UnavailableRecord(meetingID string) Record {
	return Record{MeetingID: meetingID}
}

// Text returns the prompt-ready representation: the content, or the
// not-available notice.
func (r Record) Text() string {
	if !r.Available {
		return NotAvailableNotice
	}
	return r.Content
}

// Bundle is the assembled context for one summarize or analyze request.
// Built fresh per request and never mutated after construction.
type Bundle struct {
	CurrentMeeting    graph.Event
	CurrentTranscript Record
	PastMeetings      []graph.Event
	PastTranscripts   []Record
}
