// Package dispatch implements C9: a single dispatch(ToolRequest) ->
// ToolResponseEnvelope facade in front of every other component, closing
// over policy admission and the closed error-code set (Dispatch itself
// performs no cache lookup; a handler runs on every call) —
// the JSON-RPC request/response/error shape the teacher's mcp package
// used for its tool surface, generalized from a JSON-RPC transport into
// a transport-agnostic envelope any caller (CLI, HTTP, future RPC layer)
// can use directly.
package dispatch

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/codescalpel/codescalpel/internal/scalpelerr"
)

// ToolRequest is the closed-shape request every tool handler receives.
type ToolRequest struct {
	ToolID  string          `json:"tool_id"`
	Tier    string          `json:"tier"`
	Params  json.RawMessage `json:"params"`
	Capabilities []string   `json:"capabilities,omitempty"`
}

// EnvelopeError is the closed error shape carried on a failed response;
// Code is always one of scalpelerr.Kind's string values.
type EnvelopeError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToolResponseEnvelope is the uniform response shape for every dispatch
// call, win or fail.
type ToolResponseEnvelope struct {
	Tier          string         `json:"tier"`
	ToolVersion   string         `json:"tool_version"`
	ToolID        string         `json:"tool_id"`
	RequestID     string         `json:"request_id"`
	Capabilities  []string       `json:"capabilities,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	Error         *EnvelopeError `json:"error,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	UpgradeHints  []string       `json:"upgrade_hints,omitempty"`
	Data          interface{}    `json:"data,omitempty"`
}

// Handler executes one tool's logic and returns its raw result data, or
// an error — which must be a *scalpelerr.Error to carry a specific
// envelope code, otherwise it is attributed KindInternal.
type Handler func(ctx context.Context, req ToolRequest) (interface{}, []string, error)

// Admitter gates a request before a Handler runs. It is a plain function
// type so dispatch does not import the policy package; the policy
// package's PolicySet.Evaluate has a different signature (it takes a
// policy.Request and returns a Decision) and needs a small adapter
// closure to be used here.
type Admitter func(req ToolRequest) error

// Registry maps tool ids to their handlers and advertised version.
type Registry struct {
	toolVersion string
	handlers    map[string]Handler
	admit       Admitter
}

// NewRegistry builds an empty registry. admit may be nil to skip policy
// admission (e.g. in tests).
func NewRegistry(toolVersion string, admit Admitter) *Registry {
	return &Registry{toolVersion: toolVersion, handlers: make(map[string]Handler), admit: admit}
}

// Register adds a handler for toolID. Registering the same id twice
// overwrites the previous handler.
func (r *Registry) Register(toolID string, h Handler) {
	r.handlers[toolID] = h
}

// Dispatch is the single entry point every caller goes through:
// admit -> locate handler -> run with cancellation -> convert to
// envelope. It never panics a caller-visible error past this boundary;
// every failure, including an unregistered tool id or a context
// cancellation, is converted into an EnvelopeError on the returned
// envelope.
func (r *Registry) Dispatch(ctx context.Context, req ToolRequest) ToolResponseEnvelope {
	start := time.Now()
	requestID := uuid.NewString()

	envelope := ToolResponseEnvelope{
		Tier:        req.Tier,
		ToolVersion: r.toolVersion,
		ToolID:      req.ToolID,
		RequestID:   requestID,
	}

	if r.admit != nil {
		if err := r.admit(req); err != nil {
			envelope.Error = toEnvelopeError(err)
			envelope.DurationMs = elapsedMs(start)
			return envelope
		}
	}

	handler, ok := r.handlers[req.ToolID]
	if !ok {
		envelope.Error = &EnvelopeError{Code: string(scalpelerr.KindNotImplemented), Message: "unknown tool id: " + req.ToolID}
		envelope.DurationMs = elapsedMs(start)
		return envelope
	}

	type result struct {
		data     interface{}
		warnings []string
		err      error
	}
	done := make(chan result, 1)
	go func() {
		data, warnings, err := handler(ctx, req)
		done <- result{data, warnings, err}
	}()

	select {
	case <-ctx.Done():
		envelope.Error = &EnvelopeError{Code: string(scalpelerr.KindTimeout), Message: ctx.Err().Error()}
	case res := <-done:
		if res.err != nil {
			envelope.Error = toEnvelopeError(res.err)
		} else {
			envelope.Data = res.data
			envelope.Warnings = res.warnings
		}
	}

	envelope.DurationMs = elapsedMs(start)
	return envelope
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// toEnvelopeError converts an attributed error into the envelope's
// closed error shape, defaulting to KindInternal for anything that did
// not go through scalpelerr.
func toEnvelopeError(err error) *EnvelopeError {
	if se, ok := scalpelerr.As(err); ok {
		return &EnvelopeError{Code: string(se.Kind), Message: se.Message, Details: se.Details}
	}
	return &EnvelopeError{Code: string(scalpelerr.KindInternal), Message: err.Error()}
}

// MarshalEnvelope serializes an envelope with goccy/go-json, the same
// encoder the output formatters use for machine-readable results.
func MarshalEnvelope(e ToolResponseEnvelope) ([]byte, error) {
	return json.Marshal(e)
}
