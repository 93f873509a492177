package matext

import (
	"log/slog"

	"github.com/gogpu/matext/layout"
	"github.com/gogpu/matext/material"
)

// EngineOption configures an Engine during creation.
//
// Example:
//
//	e := matext.NewEngine(graph, store, matext.WithLogger(logger))
type EngineOption func(*engineOptions)

type engineOptions struct {
	layout *layout.Layout
	logger *slog.Logger
}

func defaultOptions() engineOptions {
	return engineOptions{
		layout: material.OutlineLayout,
	}
}

// WithLayout sets the slot layout composites are checked against.
// The default is material.OutlineLayout. A nil layout keeps the default.
func WithLayout(l *layout.Layout) EngineOption {
	return func(o *engineOptions) {
		if l != nil {
			o.layout = l
		}
	}
}

// WithLogger sets the engine logger. Without it the engine logs through
// the shared logger configured by SetLogger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = l
	}
}
