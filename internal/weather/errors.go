package weather

import (
	"errors"
	"fmt"
)

// TransientError marks a failure that is expected to clear on its own
// (network timeout, rate limiting, provider 5xx). The scheduler may retry
// the run.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that retrying will not fix (rejected
// credentials, non-retryable provider status). The run fails and is surfaced
// to operators.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %s: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// SchemaMismatchError marks a provider payload that no longer matches the
// expected contract: a required field is missing, a value has the wrong type,
// or the body cannot be decoded at all. It indicates a provider contract
// change that needs a code update, so it is never retried.
type SchemaMismatchError struct {
	Field string
	Err   error
}

func (e *SchemaMismatchError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema mismatch: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("schema mismatch: %v", e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is a non-retryable fetch failure.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsSchemaMismatch reports whether err signals a provider contract change.
func IsSchemaMismatch(err error) bool {
	var se *SchemaMismatchError
	return errors.As(err, &se)
}
