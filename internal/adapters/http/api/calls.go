// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/profilebridge/internal/adapters/mq/bus"
	"github.com/okian/profilebridge/internal/bridge"
)

// maxCallBody bounds a call's JSON arguments.
const maxCallBody = 1 << 20

// CallsHandler exposes the host entry points over HTTP.
type CallsHandler struct {
	caller Caller
}

// NewCallsHandler creates a new calls handler.
func NewCallsHandler(caller Caller) *CallsHandler {
	return &CallsHandler{caller: caller}
}

// HandleListCalls handles GET /calls and lists every entry point name.
func (h *CallsHandler) HandleListCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"calls": bridge.Entries()})
}

// HandlePostCall handles POST /calls/{entry}. The body is a JSON object of
// arguments named as on the wire.
func (h *CallsHandler) HandlePostCall(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_call"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/calls/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.caller.Call(r.Context(), name, body); err != nil {
		switch {
		case errors.Is(err, bridge.ErrUnknownCall):
			writeError(w, http.StatusNotFound, "unknown_call", err)
		case errors.Is(err, bridge.ErrContract):
			writeError(w, http.StatusBadRequest, "contract_violation", err)
		case errors.Is(err, bus.ErrBackpressure):
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		case errors.Is(err, bus.ErrClosed):
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Call: name})
}
