// Package dispatch routes inbound chat messages to exactly one handler:
// trigger-phrase matching selects an intent, the intent's handler drives the
// aggregation, lifecycle, and generation collaborators, and everything else
// falls through to the counting echo.
package dispatch

import "strings"

// Intent enumerates every command the dispatcher understands. IntentNone is
// the fallback echo.
type Intent int

const (
	IntentNone Intent = iota
	IntentPlan
	IntentSummarize
	IntentAnalyze
	IntentJoin
	IntentStartRecording
	IntentStopRecording
	IntentHangUp
	IntentInvite
	IntentCount
	IntentState
	IntentDiag
	IntentRuntime
	IntentReset
)

func (i Intent) String() string {
	switch i {
	case IntentPlan:
		return "plan"
	case IntentSummarize:
		return "summarize"
	case IntentAnalyze:
		return "analyze"
	case IntentJoin:
		return "join-meeting"
	case IntentStartRecording:
		return "start-recording"
	case IntentStopRecording:
		return "stop-recording"
	case IntentHangUp:
		return "hang-up"
	case IntentInvite:
		return "invite-bot"
	case IntentCount:
		return "count"
	case IntentState:
		return "state"
	case IntentDiag:
		return "diag"
	case IntentRuntime:
		return "runtime"
	case IntentReset:
		return "reset"
	default:
		return "none"
	}
}

// triggers is the matching table, in priority order. First match wins, so
// phrases that could shadow each other must be listed longest first.
var triggers = []struct {
	phrase string
	intent Intent
}{
	{"plan", IntentPlan},
	{"summarize", IntentSummarize},
	{"analyze", IntentAnalyze},
	{"join-meeting", IntentJoin},
	{"start-recording", IntentStartRecording},
	{"stop-recording", IntentStopRecording},
	{"hang-up", IntentHangUp},
	{"invite-bot", IntentInvite},
	{"/count", IntentCount},
	{"/state", IntentState},
	{"/diag", IntentDiag},
	{"/runtime", IntentRuntime},
	{"/reset", IntentReset},
}

// Match resolves message text to an intent by case-insensitive substring
// check against the trigger table. Pure: no state is read or written.
func Match(text string) Intent {
	lower := strings.ToLower(text)
	for _, t := range triggers {
		if strings.Contains(lower, t.phrase) {
			return t.intent
		}
	}
	return IntentNone
}
