package state

import "sync"

// CallRegistry correlates call connection ids back to the conversation that
// started the call. Webhook notifications carry only the connection id, so
// without this map an event could never be routed to a conversation.
type CallRegistry struct {
	mu     sync.Mutex
	byConn map[string]string
}

func NewCallRegistry() *CallRegistry {
	return &CallRegistry{byConn: make(map[string]string)}
}

// Bind records that connectionID belongs to conversationID. Called once per
// call, when the join request succeeds.
func (r *CallRegistry) Bind(connectionID, conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[connectionID] = conversationID
}

// Lookup returns the conversation that owns connectionID.
func (r *CallRegistry) Lookup(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byConn[connectionID]
	return id, ok
}

// Unbind removes the correlation, once a call has fully terminated.
func (r *CallRegistry) Unbind(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, connectionID)
}
