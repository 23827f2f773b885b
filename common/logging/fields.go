package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService       = "service"
	FieldEventID       = "event_id"
	FieldEventType     = "event_type"
	FieldAggregateID   = "aggregate_id"
	FieldAggregateType = "aggregate_type"
	FieldCorrelationID = "correlation_id"
	FieldSubject       = "subject"
	FieldOutcome       = "outcome"
	FieldUserID        = "user_id"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// EventID returns a slog attribute for an event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// EventType returns a slog attribute for an event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// AggregateID returns a slog attribute for an aggregate ID.
func AggregateID(id string) slog.Attr {
	return slog.String(FieldAggregateID, id)
}

// AggregateType returns a slog attribute for an aggregate type.
func AggregateType(t string) slog.Attr {
	return slog.String(FieldAggregateType, t)
}

// Subject returns a slog attribute for a broker subject.
func Subject(subject string) slog.Attr {
	return slog.String(FieldSubject, subject)
}

// Outcome returns a slog attribute for a processing outcome.
func Outcome(outcome string) slog.Attr {
	return slog.String(FieldOutcome, outcome)
}

// UserID returns a slog attribute for the user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
