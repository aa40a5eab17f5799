package model

import "errors"

// Record-level failures. None of these aborts a batch.
var (
	ErrParseFailure           = errors.New("parse failure")
	ErrNoUniqueSubject        = errors.New("no unique subject")
	ErrNoPronounMapping       = errors.New("no pronoun mapping")
	ErrAlignmentFailure       = errors.New("alignment failure")
	ErrCoreferenceUnavailable = errors.New("coreference unavailable")
	ErrTokenizationDrift      = errors.New("tokenization drift")
)

// IsRecordLevel reports whether err is a recoverable per-record failure
func IsRecordLevel(err error) bool {
	return errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrNoUniqueSubject) ||
		errors.Is(err, ErrNoPronounMapping) ||
		errors.Is(err, ErrAlignmentFailure) ||
		errors.Is(err, ErrCoreferenceUnavailable) ||
		errors.Is(err, ErrTokenizationDrift)
}
