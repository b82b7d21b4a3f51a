package dispatch

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"plain trigger", "plan", IntentPlan},
		{"trigger inside sentence", "could you plan my week?", IntentPlan},
		{"case insensitive", "SUMMARIZE this meeting", IntentSummarize},
		{"analyze", "please analyze the meeting", IntentAnalyze},
		{"join", "join-meeting", IntentJoin},
		{"start recording", "start-recording now", IntentStartRecording},
		{"stop recording", "stop-recording", IntentStopRecording},
		{"hang up", "hang-up please", IntentHangUp},
		{"invite", "invite-bot", IntentInvite},
		{"count", "/count", IntentCount},
		{"state", "/state", IntentState},
		{"diag", "/diag", IntentDiag},
		{"runtime", "/runtime", IntentRuntime},
		{"reset", "/reset", IntentReset},
		{"priority order first wins", "plan then summarize", IntentPlan},
		{"no match", "hello there", IntentNone},
		{"empty", "", IntentNone},
		{"bare state word does not trigger", "what a state of affairs", IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.text); got != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStripMentions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<at>scriba</at> plan", "plan"},
		{"plan", "plan"},
		{"  <at>scriba</at>  hello <at>bob</at> ", "hello"},
	}
	for _, tt := range tests {
		if got := stripMentions(tt.in); got != tt.want {
			t.Errorf("stripMentions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
