// Package api exposes scriba over HTTP: the bot surface (chat activities and
// call webhooks) and the bearer-authed management surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/scriba/internal/calls"
	"github.com/kalambet/scriba/internal/dispatch"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Messenger handles one inbound chat activity.
type Messenger interface {
	OnMessage(ctx context.Context, msg dispatch.Message) []dispatch.Reply
}

// CallEventSink applies call lifecycle events.
type CallEventSink interface {
	ApplyEvent(ev calls.Event)
}

type BotDeps struct {
	Dispatcher Messenger
	Lifecycle  CallEventSink
}

// NewBotHandler returns the unauthenticated bot surface: chat activities,
// call webhooks, and liveness.
func NewBotHandler(deps BotDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/api/messages", handleMessages(deps))
	r.Post("/api/calls", handleCallEvents(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleMessages(deps BotDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var msg dispatch.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if msg.ConversationID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "conversationId is required")
			return
		}

		replies := deps.Dispatcher.OnMessage(r.Context(), msg)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"replies": replies})
	}
}

// handleCallEvents accepts a Graph communications notification batch. The
// response is always 202: the remote system does not retry on our terms, so
// malformed or unroutable notifications are logged and dropped.
func handleCallEvents(deps BotDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			slog.Warn("reading call notification batch failed", "error", err)
			w.WriteHeader(http.StatusAccepted)
			return
		}

		events, err := calls.ParseNotifications(body)
		if err != nil {
			slog.Warn("unparseable call notification batch", "error", err)
		}
		for _, ev := range events {
			deps.Lifecycle.ApplyEvent(ev)
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
