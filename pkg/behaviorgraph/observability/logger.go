// Package observability provides structured logging, metrics, and tracing
// for behavior graph engines.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry or Prometheus
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds engine context to a logger.
//
//	logger = EnrichLogger(logger, "engine-7", "guard_dialog")
//	logger.Info("ready") // includes engine_id and graph
func EnrichLogger(logger *slog.Logger, engineID, graph string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("engine_id", engineID),
		slog.String("graph", graph),
	)
}

// NodeLogger adds node context to an engine logger.
func NodeLogger(logger *slog.Logger, nodeID, kind string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("node_id", nodeID),
		slog.String("kind", kind),
	)
}

// LogGraphStart logs the start of a traversal.
func LogGraphStart(logger *slog.Logger, entry string) {
	if logger == nil {
		return
	}
	logger.Info("graph started", slog.String("entry", entry))
}

// LogGraphEnd logs the end of a traversal.
func LogGraphEnd(logger *slog.Logger, reason string, visits int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("graph ended",
		slog.String("reason", reason),
		slog.Int("visits", visits),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeEnter logs a node visit.
func LogNodeEnter(logger *slog.Logger, nodeID, kind string) {
	if logger == nil {
		return
	}
	logger.Debug("node entered",
		slog.String("node_id", nodeID),
		slog.String("kind", kind),
	)
}

// LogNodeError logs a failure absorbed at the node boundary.
func LogNodeError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogConditionError logs a condition that could not be evaluated and was
// treated as not met.
func LogConditionError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("condition malformed, treated as not met",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogSuspend logs the engine locking on a node.
func LogSuspend(logger *slog.Logger, nodeID string, lockSeq uint64) {
	if logger == nil {
		return
	}
	logger.Debug("engine suspended",
		slog.String("node_id", nodeID),
		slog.Uint64("lock_seq", lockSeq),
	)
}

// LogResume logs the engine unlocking.
func LogResume(logger *slog.Logger, nodeID string, suspendedMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("engine resumed",
		slog.String("node_id", nodeID),
		slog.Float64("suspended_ms", suspendedMs),
	)
}

// LogInterrupt logs an interrupt firing. Latched interrupts are applied at
// the next unlock.
func LogInterrupt(logger *slog.Logger, name, from, target string, latched bool) {
	if logger == nil {
		return
	}
	logger.Info("interrupt fired",
		slog.String("interrupt", name),
		slog.String("from", from),
		slog.String("target", target),
		slog.Bool("latched", latched),
	)
}

// LogStaleThread logs a thread that finished after its lock was released.
func LogStaleThread(logger *slog.Logger, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("stale thread completion ignored", slog.String("node_id", nodeID))
}

// LogJobError logs a thread step failure. Unless the job gave up, it is
// stepped again on the next tick.
func LogJobError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("thread step failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogCheckpointError logs a checkpoint failure (non-fatal).
func LogCheckpointError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation returns a function reporting elapsed milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
