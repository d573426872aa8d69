// Package awserr maps AWS SDK failures onto the small set of error kinds
// the CLI and bulk orchestrator branch on. Credential and validation
// errors are fatal for a whole invocation; permission, throttling, and
// not-found errors are recorded per group during bulk runs and never
// abort the batch.
package awserr

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Kind is the coarse error category.
type Kind int

const (
	KindUnknown Kind = iota
	KindCredential
	KindPermission
	KindThrottling
	KindValidation
	KindNotFound
)

// String returns the kind label used in structured batch output.
func (k Kind) String() string {
	switch k {
	case KindCredential:
		return "credential_error"
	case KindPermission:
		return "permission_error"
	case KindThrottling:
		return "throttling_error"
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found_error"
	default:
		return "error"
	}
}

// Error wraps an underlying failure with its classified kind and the
// operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err and attaches op. A nil err returns nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

// WrapKind attaches an explicit kind irrespective of classification.
// The loader uses it to mark credential-resolution failures, which the
// SDK does not surface as API errors.
func WrapKind(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a fatal validation error from operator input.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// Classify inspects err and returns its kind. Already-wrapped errors keep
// their kind; smithy API errors are mapped by error code; everything else
// is KindUnknown.
func Classify(err error) Kind {
	var wrapped *Error
	if errors.As(err, &wrapped) {
		return wrapped.Kind
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return KindUnknown
	}

	switch apiErr.ErrorCode() {
	case "UnauthorizedOperation", "AccessDenied", "AccessDeniedException", "UnauthorizedAccess":
		return KindPermission
	case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
		return KindThrottling
	case "InvalidGroup.NotFound", "InvalidGroupId.NotFound":
		return KindNotFound
	case "InvalidGroupId.Malformed", "InvalidParameterValue", "ValidationError":
		return KindValidation
	case "AuthFailure", "ExpiredToken", "ExpiredTokenException", "InvalidClientTokenId", "UnrecognizedClientException":
		return KindCredential
	default:
		return KindUnknown
	}
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return Classify(err) == kind
}

// IsFatal reports whether err must abort the whole invocation rather than
// a single group. Credential and validation failures cannot succeed on
// retry against another group.
func IsFatal(err error) bool {
	switch Classify(err) {
	case KindCredential, KindValidation:
		return true
	default:
		return false
	}
}
