package model

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType represents different types of intake events
type EventType string

const (
	V1CallReport        EventType = "v1.intake.call-report"
	V1DocumentExtracted EventType = "v1.intake.document-extracted"
)

// MapToBaseEventType maps a subject (possibly with a trailing identifier such as
// an agency id) back to a known EventType.
func MapToBaseEventType(input string) (EventType, bool) {
	switch EventType(input) {
	case V1CallReport, V1DocumentExtracted:
		return EventType(input), true
	}

	lastDotIndex := strings.LastIndex(input, ".")
	if lastDotIndex <= 0 {
		return "", false
	}

	switch base := EventType(input[:lastDotIndex]); base {
	case V1CallReport, V1DocumentExtracted:
		return base, true
	default:
		return "", false
	}
}

// GetVersion extracts the version from an event type, e.g. "v1".
func (e EventType) GetVersion() string {
	parts := strings.SplitN(string(e), ".", 2)
	if len(parts) < 2 {
		return ""
	}
	if len(parts[0]) >= 2 && parts[0][0] == 'v' {
		return parts[0]
	}
	return ""
}

// GetBaseType returns the event type without the version prefix
// For example: "v1.intake.call-report" -> "intake.call-report"
func (e EventType) GetBaseType() EventType {
	version := e.GetVersion()
	if version == "" {
		return e
	}
	return EventType(strings.TrimPrefix(string(e), version+"."))
}

// MessageMetadata is the JetStream delivery information attached to an event.
type MessageMetadata struct {
	ConsumerSequence uint64
	StreamSequence   uint64
	NumDelivered     uint64
	NumPending       uint64
	Timestamp        time.Time
	Stream           string
	Consumer         string
	Domain           string
	MessageID        string
	MessageSubject   string
}

// DLQPayload is published to the dead-letter subject when an intake event
// cannot be processed.
type DLQPayload struct {
	SourceSubject   string          `json:"source_subject"`
	OriginalPayload json.RawMessage `json:"original_payload"`
	Error           string          `json:"error"`
	ErrorType       string          `json:"error_type"` // "retryable" or "fatal"
	RetryCount      uint64          `json:"retry_count"`
	MaxRetry        int             `json:"max_retry"`
	Timestamp       time.Time       `json:"timestamp"`
}
