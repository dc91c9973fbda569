package dht

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failed read. Every kind means the whole handshake must
// be restarted; no partial state survives.
type Kind int

const (
	// NoResponse: the sensor never acknowledged the start signal.
	NoResponse Kind = iota + 1
	// Timeout: a pulse outlasted its bound.
	Timeout
	// ChecksumMismatch: a full frame arrived corrupted.
	ChecksumMismatch
	// MalformedFrame: decoded values are out of range or the pulse train
	// lost sync.
	MalformedFrame
)

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrNoResponse       = errors.New("no response")
	ErrTimeout          = errors.New("timeout")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrMalformedFrame   = errors.New("malformed frame")
)

func (k Kind) String() string {
	switch k {
	case NoResponse:
		return "NoResponse"
	case Timeout:
		return "Timeout"
	case ChecksumMismatch:
		return "ChecksumMismatch"
	case MalformedFrame:
		return "MalformedFrame"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case NoResponse:
		return ErrNoResponse
	case Timeout:
		return ErrTimeout
	case ChecksumMismatch:
		return ErrChecksumMismatch
	case MalformedFrame:
		return ErrMalformedFrame
	}
	return nil
}

// Phase is the protocol state a read failed in.
type Phase string

const (
	PhaseHostStart   Phase = "host-start"
	PhaseWaitAck     Phase = "wait-ack"
	PhaseWaitReady   Phase = "wait-ready"
	PhaseReadingBits Phase = "reading-bits"
	PhaseValidating  Phase = "validating"
)

// ProtocolError is a failed read. It carries no recoverable state.
type ProtocolError struct {
	Kind  Kind
	Phase Phase
	// Bit is the bit index (0..39) for failures while reading bits, -1
	// otherwise.
	Bit int
	// Pulse is the measured duration that triggered the failure, if any.
	Pulse time.Duration
	// Detail is free text, e.g. the checksum values.
	Detail string
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("dht: %v in %s", e.Kind.sentinel(), e.Phase)
	if e.Bit >= 0 {
		msg += fmt.Sprintf(" (bit %d)", e.Bit)
	}
	if e.Pulse > 0 {
		msg += fmt.Sprintf(" after %v", e.Pulse)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel for the error's Kind.
func (e *ProtocolError) Unwrap() error {
	return e.Kind.sentinel()
}

func protoErr(k Kind, p Phase, bit int, pulse time.Duration) *ProtocolError {
	return &ProtocolError{Kind: k, Phase: p, Bit: bit, Pulse: pulse}
}

// KindOf returns a short label for err suitable for counters: the Kind
// name for protocol errors, "LineError" for anything else.
func KindOf(err error) string {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Kind.String()
	}
	return "LineError"
}
