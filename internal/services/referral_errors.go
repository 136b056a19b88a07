package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a referral claim was not accepted
type ErrorKind string

const (
	KindMissingFields  ErrorKind = "missing_fields"
	KindSelfReferral   ErrorKind = "self_referral"
	KindDuplicateEmail ErrorKind = "duplicate_email"
	KindDuplicateIP    ErrorKind = "duplicate_ip"
	KindStorageFailure ErrorKind = "storage_failure"
)

var kindMessages = map[ErrorKind]string{
	KindMissingFields:  "Missing required fields",
	KindSelfReferral:   "You cannot refer yourself.",
	KindDuplicateEmail: "This email has already been referred.",
	KindDuplicateIP:    "This IP has already been used for referral.",
	KindStorageFailure: "Internal Server Error",
}

// ReferralError is returned by AcceptReferral for every rejected claim.
// Err carries the internal cause of a storage failure and is never shown to users.
type ReferralError struct {
	Kind ErrorKind
	Err  error
}

func (e *ReferralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("referral %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("referral %s", e.Kind)
}

func (e *ReferralError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing text for the error kind
func (e *ReferralError) Message() string {
	return kindMessages[e.Kind]
}

// IsClientError reports whether the claim itself was at fault.
// Client errors are terminal and must not be retried.
func (e *ReferralError) IsClientError() bool {
	return e.Kind != KindStorageFailure
}

func newReferralError(kind ErrorKind, err error) *ReferralError {
	return &ReferralError{Kind: kind, Err: err}
}

// ReferralErrorKind extracts the kind from err, or "" when err is not a ReferralError
func ReferralErrorKind(err error) ErrorKind {
	var refErr *ReferralError
	if errors.As(err, &refErr) {
		return refErr.Kind
	}
	return ""
}
