package gourdianclaims

import (
	"context"
	"log/slog"
)

// Attribute helpers return an empty Attr for zero inputs, which slog drops.

func errorAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func diagnosticAttr(diag Diagnostic) slog.Attr {
	return slog.String("diagnostic", diag.String())
}

func tokenIDAttr(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("token_id", id)
}

func stateAttr(state ResolutionState) slog.Attr {
	return slog.String("state", state.String())
}

// discardHandler drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(discardHandler{})
}
