package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after the command returns.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution. A handler holds a single
// callback; use ChainTelemetry to fan out.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// CommandRecorder receives per operation outcome counts.
type CommandRecorder interface {
	CommandCompleted(operation, status string)
}

// DefaultTelemetry logs the outcome. Failures are logged at error level with
// the error attached; success logs the duration only.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"status", string(info.Status), "duration_ms", info.Duration.Milliseconds()}
		if info.Status == TelemetryStatusSuccess {
			entry.Info("command finished", args...)
			return
		}
		entry.Error("command failed", append(args, "error", info.Error)...)
	}
}

// MetricsTelemetry counts outcomes on recorder, keyed by operation.
func MetricsTelemetry[T command.Message](recorder CommandRecorder) Telemetry[T] {
	return func(_ context.Context, msg T, info TelemetryInfo) {
		if recorder == nil {
			return
		}
		operation := info.Operation
		if operation == "" {
			operation = command.GetMessageType(msg)
		}
		recorder.CommandCompleted(operation, string(info.Status))
	}
}

// ChainTelemetry calls each non-nil callback in order.
func ChainTelemetry[T command.Message](callbacks ...Telemetry[T]) Telemetry[T] {
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		for _, cb := range callbacks {
			if cb != nil {
				cb(ctx, msg, info)
			}
		}
	}
}
