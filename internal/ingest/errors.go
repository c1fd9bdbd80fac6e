package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for document transformation. Callers match on these with
// errors.Is; the typed errors below carry the details.
var (
	ErrMalformedDocument       = errors.New("malformed document")
	ErrInvalidResolution       = errors.New("invalid resolution")
	ErrLengthMismatch          = errors.New("index and point length mismatch")
	ErrUnsupportedDocumentType = errors.New("unsupported document type")
	ErrMetadataCollision       = errors.New("metadata key collision")
)

// MalformedDocumentError reports a document that is not well-formed markup or
// violates the expected document structure.
type MalformedDocumentError struct {
	Offset int64 // byte offset reported by the decoder, -1 if unknown
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	msg := "malformed document"
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

func (e *MalformedDocumentError) Is(target error) bool { return target == ErrMalformedDocument }

func malformed(reason string, args ...any) error {
	return &MalformedDocumentError{Offset: -1, Reason: fmt.Sprintf(reason, args...)}
}

// InvalidResolutionError reports an unrecognized resolution code.
type InvalidResolutionError struct {
	Code string
}

func (e *InvalidResolutionError) Error() string {
	return fmt.Sprintf("invalid resolution %q", e.Code)
}

func (e *InvalidResolutionError) Is(target error) bool { return target == ErrInvalidResolution }

// LengthMismatchError reports a period whose repaired point list does not match
// its time index.
type LengthMismatchError struct {
	Index  int
	Points int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("index has %d entries but period has %d points", e.Index, e.Points)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// UnsupportedDocumentTypeError names the (root tag, type code) pair that has no
// strategy.
type UnsupportedDocumentTypeError struct {
	RootTag  string
	TypeCode string
}

func (e *UnsupportedDocumentTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: root=%s type=%s", e.RootTag, e.TypeCode)
}

func (e *UnsupportedDocumentTypeError) Is(target error) bool {
	return target == ErrUnsupportedDocumentType
}

// MetadataCollisionError names a dotted path produced twice.
type MetadataCollisionError struct {
	Path string
}

func (e *MetadataCollisionError) Error() string {
	return fmt.Sprintf("metadata key collision on %q", e.Path)
}

func (e *MetadataCollisionError) Is(target error) bool { return target == ErrMetadataCollision }

// AcknowledgementError is returned for acknowledgement documents, which the
// publishing API sends instead of data when a query matched nothing or was
// rejected.
type AcknowledgementError struct {
	Code string
	Text string
}

func (e *AcknowledgementError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("acknowledgement document: reason %s", e.Code)
	}
	return fmt.Sprintf("acknowledgement document: reason %s: %s", e.Code, e.Text)
}

// Outcome classifies a transform error for metrics and logs.
func Outcome(err error) string {
	var ack *AcknowledgementError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ack):
		return "acknowledgement"
	case errors.Is(err, ErrUnsupportedDocumentType):
		return "unsupported"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed"
	case errors.Is(err, ErrInvalidResolution):
		return "invalid_resolution"
	case errors.Is(err, ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, ErrMetadataCollision):
		return "collision"
	default:
		return "error"
	}
}
