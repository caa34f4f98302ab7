package client

import "github.com/rs/zerolog"

// Notifier receives transient user-facing messages. The pipeline resolves
// exactly one failure class by itself (expired credential via refresh);
// everything else is surfaced here for the UI layer to present.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
	Warning(message string)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
func (NopNotifier) Info(string)    {}
func (NopNotifier) Warning(string) {}

// LogNotifier writes messages to a zerolog logger. Useful for headless
// consumers that have no toast surface.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Success(message string) { n.Log.Info().Str("kind", "success").Msg(message) }
func (n LogNotifier) Error(message string)   { n.Log.Error().Msg(message) }
func (n LogNotifier) Info(message string)    { n.Log.Info().Msg(message) }
func (n LogNotifier) Warning(message string) { n.Log.Warn().Msg(message) }
