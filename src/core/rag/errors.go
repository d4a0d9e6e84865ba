package rag

import (
	"errors"
	"fmt"
)

// Reason is the closed set of external-capability failure causes. Vendor
// errors are classified into it once, at the capability boundary; everything
// above depends only on this set.
type Reason string

const (
	ReasonAuth             Reason = "auth"
	ReasonQuota            Reason = "quota"
	ReasonNetwork          Reason = "network"
	ReasonModelUnavailable Reason = "model_unavailable"
	ReasonContentFiltered  Reason = "content_filtered"
)

// ValidationError reports bad caller input, rejected before any external
// call. Always recoverable with a corrected retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UnsupportedFormatError rejects an upload whose type is not a supported
// text-bearing format.
type UnsupportedFormatError struct {
	Filename    string
	ContentType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q for %s", e.ContentType, e.Filename)
}

// ErrNoText marks an extraction that produced no usable text.
var ErrNoText = errors.New("no extractable text")

// ExtractionError reports a failed text extraction. Nothing is written when
// it occurs.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError reports a failed embedding call, carrying the classified
// cause.
type EmbeddingError struct {
	Reason Reason
	Err    error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Reason, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError reports a failed generation call or stream.
type GenerationError struct {
	Reason Reason
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StoreError reports a vector-store failure. A missing collection is not a
// StoreError on the read path; retrieval treats it as the valid
// no-knowledge-yet state.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// FailureReason extracts the classified cause from an embedding or
// generation error, or "" when err is neither.
func FailureReason(err error) Reason {
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return ee.Reason
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return ""
}

// IsQuota reports whether err is a quota-exhaustion failure. Callers use it
// to present actionable guidance instead of a generic failure.
func IsQuota(err error) bool {
	return FailureReason(err) == ReasonQuota
}

// IsTransient reports whether retrying err with backoff can help. Quota and
// auth failures are never transient.
func IsTransient(err error) bool {
	return FailureReason(err) == ReasonNetwork
}
