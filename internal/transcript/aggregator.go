package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/scriba/internal/graph"
)

// defaultWindow is the rolling range used to locate the current meeting and
// recent history: seven days back, seven days ahead.
const defaultWindow = 7 * 24 * time.Hour

// Calendar is the slice of the Graph client the aggregator consumes.
type Calendar interface {
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]graph.Event, error)
	GetEvent(ctx context.Context, userID, eventID string) (graph.Event, error)
	ChatJoinURL(ctx context.Context, chatID string) (string, error)
	ResolveOnlineMeeting(ctx context.Context, userID, joinURL string) (graph.OnlineMeeting, error)
	ListTranscripts(ctx context.Context, userID, meetingID string) ([]graph.TranscriptHandle, error)
	FetchTranscriptContent(ctx context.Context, userID string, h graph.TranscriptHandle) (string, error)
}

// Aggregator builds context bundles from calendar and transcript lookups.
// Batch collection isolates per-meeting failures; only the initial event
// listing aborts a batch. Current-meeting resolution is strict — downstream
// prompts need at least the current meeting's metadata.
type Aggregator struct {
	cal         Calendar
	window      time.Duration
	concurrency int
	logger      *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency lets the batch fetch up to n meetings' transcripts at
// once. Per-meeting failure isolation and result ordering are preserved;
// n <= 1 keeps the sequential reference behavior.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 1 {
			a.concurrency = n
		}
	}
}

func New(cal Calendar, opts ...Option) *Aggregator {
	a := &Aggregator{
		cal:         cal,
		window:      defaultWindow,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CollectPastTranscripts gathers every online meeting on the user's calendar
// together with its transcript lookup result, in calendar order. In-person
// meetings (no join URL) are skipped entirely. A meeting whose online-meeting
// resolution or transcript listing finds nothing yields a not-available
// record; so does a per-meeting transport failure, which is logged rather
// than aborting the batch. allTime selects the unbounded range used by the
// analyze flow; otherwise the rolling window applies.
func (a *Aggregator) CollectPastTranscripts(ctx context.Context, userID string, allTime bool) ([]graph.Event, []Record, error) {
	var from, to time.Time
	if !allTime {
		now := time.Now()
		from, to = now.Add(-a.window), now.Add(a.window)
	}

	events, err := a.cal.ListEvents(ctx, userID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("listing meetings: %w", err)
	}

	var online []graph.Event
	for _, ev := range events {
		if ev.JoinURL == "" {
			continue
		}
		online = append(online, ev)
	}

	records := make([]Record, len(online))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, ev := range online {
		g.Go(func() error {
			records[i] = a.lookupTranscript(gctx, userID, ev)
			return nil
		})
	}
	// Workers never return errors; per-meeting failures become records.
	_ = g.Wait()

	return online, records, nil
}

// lookupTranscript resolves one meeting's transcript, mapping every absence
// or failure to the not-available record.
func (a *Aggregator) lookupTranscript(ctx context.Context, userID string, ev graph.Event) Record {
	om, err := a.cal.ResolveOnlineMeeting(ctx, userID, ev.JoinURL)
	if err != nil {
		if !errors.Is(err, graph.ErrNotFound) {
			a.logger.Warn("online meeting resolution failed", "event", ev.ID, "error", err)
		}
		return UnavailableRecord(ev.ID)
	}

	handles, err := a.cal.ListTranscripts(ctx, userID, om.ID)
	if err != nil {
		a.logger.Warn("transcript listing failed", "event", ev.ID, "error", err)
		return UnavailableRecord(ev.ID)
	}
	if len(handles) == 0 {
		return UnavailableRecord(ev.ID)
	}

	// The provider's own ordering is trusted; take the first transcript.
	content, err := a.cal.FetchTranscriptContent(ctx, userID, handles[0])
	if err != nil {
		a.logger.Warn("transcript fetch failed", "event", ev.ID, "transcript", handles[0].ID, "error", err)
		return UnavailableRecord(ev.ID)
	}
	return AvailableRecord(ev.ID, content)
}

// CurrentMeeting recovers the calendar event behind the conversation's live
// chat. The conversation id alone carries no event id, so resolution is
// two-hop: chat → join URL → online meeting, then matched against calendar
// events inside the rolling window. Any miss is terminal for this lookup.
func (a *Aggregator) CurrentMeeting(ctx context.Context, userID, chatID string) (graph.Event, error) {
	joinURL, err := a.cal.ChatJoinURL(ctx, chatID)
	if err != nil {
		return graph.Event{}, fmt.Errorf("resolving chat join URL: %w", err)
	}

	om, err := a.cal.ResolveOnlineMeeting(ctx, userID, joinURL)
	if err != nil {
		return graph.Event{}, fmt.Errorf("resolving online meeting: %w", err)
	}

	now := time.Now()
	events, err := a.cal.ListEvents(ctx, userID, now.Add(-a.window), now.Add(a.window))
	if err != nil {
		return graph.Event{}, fmt.Errorf("listing calendar events: %w", err)
	}
	for _, ev := range events {
		if ev.JoinURL != "" && ev.JoinURL == om.JoinURL {
			return ev, nil
		}
	}
	return graph.Event{}, fmt.Errorf("no calendar event matches the current meeting: %w", graph.ErrNotFound)
}

// CurrentTranscript fetches the transcript of the conversation's live
// meeting. Meeting resolution misses are terminal; an absent transcript is
// the not-available record.
func (a *Aggregator) CurrentTranscript(ctx context.Context, userID, chatID string) (Record, error) {
	joinURL, err := a.cal.ChatJoinURL(ctx, chatID)
	if err != nil {
		return Record{}, fmt.Errorf("resolving chat join URL: %w", err)
	}

	om, err := a.cal.ResolveOnlineMeeting(ctx, userID, joinURL)
	if err != nil {
		return Record{}, fmt.Errorf("resolving online meeting: %w", err)
	}

	handles, err := a.cal.ListTranscripts(ctx, userID, om.ID)
	if err != nil {
		return Record{}, fmt.Errorf("listing transcripts: %w", err)
	}
	if len(handles) == 0 {
		return UnavailableRecord(om.ID), nil
	}

	content, err := a.cal.FetchTranscriptContent(ctx, userID, handles[0])
	if err != nil {
		return Record{}, fmt.Errorf("fetching transcript content: %w", err)
	}
	return AvailableRecord(om.ID, content), nil
}

// BuildSummarizeBundle assembles the full context for the single-meeting
// summarize flow: current meeting (strict), current transcript (absence
// tolerated), and windowed history.
func (a *Aggregator) BuildSummarizeBundle(ctx context.Context, userID, chatID string) (Bundle, error) {
	meeting, err := a.CurrentMeeting(ctx, userID, chatID)
	if err != nil {
		return Bundle{}, err
	}

	current, err := a.CurrentTranscript(ctx, userID, chatID)
	if err != nil {
		return Bundle{}, err
	}

	past, records, err := a.CollectPastTranscripts(ctx, userID, false)
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{
		CurrentMeeting:    meeting,
		CurrentTranscript: current,
		PastMeetings:      past,
		PastTranscripts:   records,
	}, nil
}

// BuildAnalyzeBundle assembles the cross-meeting analysis context for one
// selected calendar event, with unbounded history.
func (a *Aggregator) BuildAnalyzeBundle(ctx context.Context, userID, eventID string) (Bundle, error) {
	meeting, err := a.cal.GetEvent(ctx, userID, eventID)
	if err != nil {
		return Bundle{}, fmt.Errorf("getting selected meeting: %w", err)
	}

	past, records, err := a.CollectPastTranscripts(ctx, userID, true)
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{
		CurrentMeeting:  meeting,
		PastMeetings:    past,
		PastTranscripts: records,
	}, nil
}
