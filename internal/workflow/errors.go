package workflow

import (
	"errors"
	"fmt"
)

// ErrSubmitInFlight is returned when a submission arrives while another
// one is still running. Callers are expected to disable the submit
// trigger for the duration of a pending workflow.
var ErrSubmitInFlight = errors.New("a profile submission is already in progress")

// ValidationError carries field-scoped messages from the static form
// rules. No network call happens before it is raised.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// AuthError means re-authentication failed. It is scoped to the
// current-password field so the form can surface it in place.
type AuthError struct {
	Field string
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("re-authentication failed (%s): %v", e.Field, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UploadError means the photo transfer failed; nothing was persisted.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("photo upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PersistError means the remote profile API rejected the change or was
// unreachable; the cached profile is untouched.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("profile update failed: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// CredentialPropagationError means the profile store accepted the change
// but the identity provider update failed afterwards. The profile change
// is kept; the credential change is reported separately so the user can
// retry it.
type CredentialPropagationError struct {
	Err error
}

func (e *CredentialPropagationError) Error() string {
	return fmt.Sprintf("profile saved but credential update failed: %v", e.Err)
}

func (e *CredentialPropagationError) Unwrap() error { return e.Err }
