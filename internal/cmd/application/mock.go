// Package application provides a mock Application for command tests.
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/harvestsync"
	app "github.com/agentstation/harvestsync/cmd/application"
	"github.com/agentstation/harvestsync/pkg/errors"
)

// Mock implements app.Application with function fields. A nil field returns
// a zero value or a not-found error.
type Mock struct {
	ClientFunc       func(opts ...harvestsync.Option) (harvestsync.Client, error)
	HistoryFunc      func() (app.History, error)
	Interval         time.Duration
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

var _ app.Application = (*Mock)(nil)

// Client calls ClientFunc.
func (m *Mock) Client(opts ...harvestsync.Option) (harvestsync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return nil, errors.NewNotFoundError("client", "mock")
}

// SyncInterval returns Interval.
func (m *Mock) SyncInterval() time.Duration {
	return m.Interval
}

// History calls HistoryFunc.
func (m *Mock) History() (app.History, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc()
	}
	return nil, errors.NewNotFoundError("journal", "mock")
}

// Logger returns a no-op logger unless LoggerFunc is set.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat defaults to json, which is easy to assert on.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns "test" unless VersionFunc is set.
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns a placeholder.
func (m *Mock) Commit() string { return "none" }

// Date returns a placeholder.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a placeholder.
func (m *Mock) BuiltBy() string { return "test" }
