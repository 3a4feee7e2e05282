package api

import (
	"time"

	"github.com/google/uuid"
)

// Meta carries the envelope metadata attached to every Signal.
type Meta struct {
	// Source identifies where the signal originated (a handler name,
	// "caller", a tool name, ...). Informational only.
	Source string

	// Timestamp is the creation time of this signal.
	Timestamp time.Time

	// TraceID is a collision-resistant identifier assigned when the signal
	// is created. It is never reused between signals.
	TraceID string

	// CorrelationID links a derived signal back to its parent: it holds the
	// parent's TraceID, and is empty for signals created from scratch.
	CorrelationID string

	// Custom holds caller-defined metadata.
	Custom map[string]any
}

// Signal is the immutable message that flows between handlers: a type tag,
// an arbitrary payload, and envelope metadata.
//
// Signals are never mutated in place. "Updating" a signal means producing a
// new value with one field replaced; use WithType, WithData or WithMeta.
type Signal struct {
	Type string
	Data any
	Meta Meta
}

// NewSignal creates a fresh signal with a newly generated trace ID.
func NewSignal(sigType string, data any) Signal {
	return Signal{
		Type: sigType,
		Data: data,
		Meta: Meta{
			Timestamp: time.Now(),
			TraceID:   uuid.NewString(),
		},
	}
}

// NewSignalFrom is like NewSignal but also records the source.
func NewSignalFrom(source, sigType string, data any) Signal {
	s := NewSignal(sigType, data)
	s.Meta.Source = source
	return s
}

// Derive creates a new signal from a parent. The child gets its own trace ID;
// its correlation ID is set to the parent's trace ID so the two can be
// associated later.
func Derive(parent Signal, sigType string, data any) Signal {
	s := NewSignal(sigType, data)
	s.Meta.Source = parent.Meta.Source
	s.Meta.CorrelationID = parent.Meta.TraceID
	return s
}

// WithType returns a copy of the signal with the type replaced.
func (s Signal) WithType(sigType string) Signal {
	s.Type = sigType
	return s
}

// WithData returns a copy of the signal with the payload replaced.
func (s Signal) WithData(data any) Signal {
	s.Data = data
	return s
}

// WithMeta returns a copy of the signal with one custom metadata entry set.
// The Custom map is copied so the original signal is left untouched.
func (s Signal) WithMeta(key string, value any) Signal {
	custom := make(map[string]any, len(s.Meta.Custom)+1)
	for k, v := range s.Meta.Custom {
		custom[k] = v
	}
	custom[key] = value
	s.Meta.Custom = custom
	return s
}
