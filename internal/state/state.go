package state

import "sync"

// ConversationState tracks one conversation's orchestration state: how many
// free-text messages fell through to the echo handler, and the handles of the
// live call (if any) started from this conversation.
//
// Invariant: RecordingID is empty whenever CallConnectionID is empty — a
// recording cannot outlive its call.
type ConversationState struct {
	ConversationID   string `json:"conversation_id"`
	InteractionCount int    `json:"interaction_count"`
	CallConnectionID string `json:"call_connection_id,omitempty"`
	RecordingID      string `json:"recording_id,omitempty"`
}

// InCall reports whether the conversation has an active call.
func (s ConversationState) InCall() bool { return s.CallConnectionID != "" }

// Recording reports whether the conversation's call is being recorded.
func (s ConversationState) Recording() bool { return s.RecordingID != "" }

// Store is the keyed conversation state store. Get never fails: an unseen
// conversation id yields a zero-valued state that is created and stored on
// first access. Implementations must serialize writes per key; command
// handlers and webhook application may race for the same conversation and
// last-writer-wins is acceptable.
type Store interface {
	Get(conversationID string) ConversationState
	Put(st ConversationState)
	Delete(conversationID string)
}

// MemoryStore is the default in-process Store. State lives for the process
// lifetime only; Delete is the explicit reset issued by the user.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]ConversationState)}
}

func (m *MemoryStore) Get(conversationID string) ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[conversationID]
	if !ok {
		st = ConversationState{ConversationID: conversationID}
		m.states[conversationID] = st
	}
	return st
}

func (m *MemoryStore) Put(st ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.ConversationID] = st
}

func (m *MemoryStore) Delete(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, conversationID)
}
