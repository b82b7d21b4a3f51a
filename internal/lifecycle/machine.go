// Package lifecycle tracks a conversation's live call through its states
// (idle, joining, connected, recording, disconnected). Two independent
// sources drive transitions: user commands, which validate preconditions
// before touching anything, and provider webhook events, which describe
// observed reality and therefore always win.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kalambet/scriba/internal/calls"
	"github.com/kalambet/scriba/internal/state"
)

var (
	ErrCallInProgress      = errors.New("a call is already active in this conversation")
	ErrNoActiveCall        = errors.New("no active call in this conversation")
	ErrRecordingInProgress = errors.New("a recording is already active in this conversation")
	ErrNoActiveRecording   = errors.New("no active recording in this conversation")
)

// Dialer is the subset of the telephony collaborator the machine issues
// commands through.
type Dialer interface {
	CreateCall(ctx context.Context, joinURL, callbackURL string) (string, error)
	StartRecording(ctx context.Context, connectionID, callbackURL string) (string, error)
	StopRecording(ctx context.Context, connectionID, recordingID string) error
	HangUp(ctx context.Context, connectionID string) error
}

// Machine applies lifecycle commands and webhook events to conversation
// state. Each command performs exactly one outbound call; stored state is
// updated only on confirmed success. Collaborator failures leave state
// untouched — a later authoritative webhook reconciles whatever actually
// happened.
type Machine struct {
	dialer      Dialer
	store       state.Store
	registry    *state.CallRegistry
	callbackURL string
	logger      *slog.Logger
}

func New(dialer Dialer, store state.Store, registry *state.CallRegistry, callbackURL string) *Machine {
	return &Machine{
		dialer:      dialer,
		store:       store,
		registry:    registry,
		callbackURL: callbackURL,
		logger:      slog.Default(),
	}
}

// RequestJoin places a call into the meeting behind joinURL. Fails fast if
// the conversation already has an active call.
func (m *Machine) RequestJoin(ctx context.Context, conversationID, joinURL string) (string, error) {
	st := m.store.Get(conversationID)
	if st.InCall() {
		return "", ErrCallInProgress
	}

	connID, err := m.dialer.CreateCall(ctx, joinURL, m.callbackURL)
	if err != nil {
		return "", fmt.Errorf("joining meeting: %w", err)
	}

	st.CallConnectionID = connID
	m.store.Put(st)
	m.registry.Bind(connID, conversationID)

	m.logger.Info("call join requested", "conversation", conversationID, "connection", connID)
	return connID, nil
}

// RequestStartRecording begins recording the conversation's active call.
func (m *Machine) RequestStartRecording(ctx context.Context, conversationID string) (string, error) {
	st := m.store.Get(conversationID)
	if !st.InCall() {
		return "", ErrNoActiveCall
	}
	if st.Recording() {
		return "", ErrRecordingInProgress
	}

	recID, err := m.dialer.StartRecording(ctx, st.CallConnectionID, m.callbackURL)
	if err != nil {
		return "", fmt.Errorf("starting recording: %w", err)
	}

	st.RecordingID = recID
	m.store.Put(st)

	m.logger.Info("recording started", "conversation", conversationID, "recording", recID)
	return recID, nil
}

// RequestStopRecording stops the conversation's active recording.
func (m *Machine) RequestStopRecording(ctx context.Context, conversationID string) error {
	st := m.store.Get(conversationID)
	if !st.Recording() {
		return ErrNoActiveRecording
	}

	if err := m.dialer.StopRecording(ctx, st.CallConnectionID, st.RecordingID); err != nil {
		return fmt.Errorf("stopping recording: %w", err)
	}

	st.RecordingID = ""
	m.store.Put(st)

	m.logger.Info("recording stopped", "conversation", conversationID)
	return nil
}

// RequestHangUp terminates the conversation's active call.
func (m *Machine) RequestHangUp(ctx context.Context, conversationID string) error {
	st := m.store.Get(conversationID)
	if !st.InCall() {
		return ErrNoActiveCall
	}

	if err := m.dialer.HangUp(ctx, st.CallConnectionID); err != nil {
		return fmt.Errorf("hanging up: %w", err)
	}

	m.registry.Unbind(st.CallConnectionID)
	st.CallConnectionID = ""
	st.RecordingID = ""
	m.store.Put(st)

	m.logger.Info("call hung up", "conversation", conversationID)
	return nil
}

// ApplyEvent folds one provider notification into conversation state. The
// remote system is authoritative: events advance state unconditionally,
// regardless of what the local machine believed. Events for a connection id
// no conversation owns are logged and discarded.
func (m *Machine) ApplyEvent(ev calls.Event) {
	conversationID, ok := m.registry.Lookup(ev.ConnectionID)
	if !ok {
		m.logger.Warn("call event for unknown connection, discarding",
			"kind", ev.Kind.String(), "connection", ev.ConnectionID)
		return
	}

	st := m.store.Get(conversationID)

	switch ev.Kind {
	case calls.EventConnected:
		st.CallConnectionID = ev.ConnectionID

	case calls.EventParticipantsUpdated:
		// Roster changes carry no state the machine tracks.
		m.logger.Debug("participants updated", "conversation", conversationID)
		return

	case calls.EventRecordingStateChanged:
		if ev.RecordingActive {
			// A recording cannot exist without its call.
			st.CallConnectionID = ev.ConnectionID
			if ev.RecordingID != "" {
				st.RecordingID = ev.RecordingID
			} else if st.RecordingID == "" {
				st.RecordingID = ev.ConnectionID + "/recording"
			}
		} else {
			st.RecordingID = ""
		}

	case calls.EventDisconnected:
		st.CallConnectionID = ""
		st.RecordingID = ""
		m.registry.Unbind(ev.ConnectionID)

	default:
		m.logger.Warn("unhandled call event kind", "kind", ev.Kind.String())
		return
	}

	m.store.Put(st)
	m.logger.Debug("call event applied",
		"kind", ev.Kind.String(), "conversation", conversationID, "connection", ev.ConnectionID)
}
