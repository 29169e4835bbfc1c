package integral

import "github.com/zoobzio/capitan"

// Signals for pipeline events.
const (
	RequestStarted   = capitan.Signal("integral.request.started")
	RequestCompleted = capitan.Signal("integral.request.completed")
	RequestFailed    = capitan.Signal("integral.request.failed")
	StageFailed      = capitan.Signal("integral.stage.failed")
)

// Keys for event fields.
var (
	RequestIDKey = capitan.NewStringKey("integral.request.id")
	FunctionKey  = capitan.NewStringKey("integral.function")
	LowerKey     = capitan.NewStringKey("integral.lower")
	UpperKey     = capitan.NewStringKey("integral.upper")

	ResultKey   = capitan.NewStringKey("integral.result")
	ModeKey     = capitan.NewStringKey("integral.mode")
	StepsKey    = capitan.NewIntKey("integral.steps")
	MethodsKey  = capitan.NewStringKey("integral.methods")
	DurationKey = capitan.NewIntKey("integral.duration.ms")

	// Failure detail. ErrorKey carries the full diagnostic, which never
	// reaches the caller.
	StageKey  = capitan.NewStringKey("integral.stage")
	KindKey   = capitan.NewStringKey("integral.error.kind")
	ReasonKey = capitan.NewStringKey("integral.error.reason")
	ErrorKey  = capitan.NewStringKey("integral.error")
)
