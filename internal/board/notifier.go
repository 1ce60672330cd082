package board

import "log/slog"

// Notifier surfaces the outcome of user-initiated actions, toast-style.
// Background fetches stay silent and fall back to safe defaults instead.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier reports notifications through the structured logger. It is
// the default when no UI is attached.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Success(message string) {
	n.logger().Info("board notification", "kind", "success", "message", message)
}

func (n LogNotifier) Error(message string) {
	n.logger().Warn("board notification", "kind", "error", "message", message)
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
