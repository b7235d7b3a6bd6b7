// Package workflow orchestrates one profile edit: validation,
// conditional re-authentication, conditional photo upload, persistence,
// credential propagation, and the final cache replacement. Every step
// short-circuits on its first failure and the cache is only touched
// once everything before it has succeeded.
package workflow

import (
	"context"
	"sync/atomic"

	"github.com/aroundu/app/internal/models"
	"github.com/aroundu/app/internal/upload"
)

// Reauthenticator verifies the current credential before sensitive
// changes. It is never called for non-sensitive edits.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context, email, password string) error
}

// CredentialUpdater applies email/password changes at the identity
// provider, after the profile store has accepted the edit.
type CredentialUpdater interface {
	UpdateEmail(ctx context.Context, newEmail, currentPassword string) error
	UpdatePassword(ctx context.Context, newPassword string) error
	SendEmailVerification(ctx context.Context) error
}

// ProfileClient persists the merged field changes remotely.
type ProfileClient interface {
	UpdateProfile(ctx context.Context, payload models.ProfilePayload) (*models.UserProfile, error)
}

// Cache is the narrow surface of the session user cache the workflow
// needs: read the current profile, replace it on success.
type Cache interface {
	Get() (*models.UserProfile, error)
	Replace(profile *models.UserProfile)
}

type Workflow struct {
	auth     Reauthenticator
	creds    CredentialUpdater
	uploader upload.Uploader
	profiles ProfileClient
	cache    Cache

	inFlight atomic.Bool
}

func New(auth Reauthenticator, creds CredentialUpdater, uploader upload.Uploader, profiles ProfileClient, cache Cache) *Workflow {
	return &Workflow{
		auth:     auth,
		creds:    creds,
		uploader: uploader,
		profiles: profiles,
		cache:    cache,
	}
}

// Submit runs the full edit pipeline for one form submission. On full
// success it returns the new cached profile. On CredentialPropagationError
// the returned profile is still non-nil: the profile-store change was
// kept and only the provider-side credential change needs a retry.
func (w *Workflow) Submit(ctx context.Context, req models.ProfileEditRequest) (*models.UserProfile, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer w.inFlight.Store(false)

	current, err := w.cache.Get()
	if err != nil {
		return nil, err
	}

	// Step 1: static validation, no I/O.
	if fields := req.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	// Step 2/3: sensitive edits require the current password to check out.
	emailChanged := req.Email != current.Email
	if emailChanged || req.PasswordChangeRequested() {
		if err := w.auth.Reauthenticate(ctx, current.Email, req.OldPassword); err != nil {
			return nil, &AuthError{Field: "oldPassword", Err: err}
		}
	}

	// Step 4: photo upload. All-or-nothing: a failed transfer fails the
	// whole submission so remote and local state cannot drift apart.
	payload := w.buildPayload(req, current)
	if req.Photo != nil {
		res, err := w.uploader.Upload(ctx, req.Photo.Data, req.Photo.ContentType, models.MaxPhotoSizeBytes, req.Email+"/photo")
		if err != nil {
			return nil, &UploadError{Err: err}
		}
		payload.PhotoURL = &res.URL
	}

	// Step 5: persist. The profile store goes first; it fails more often
	// than the identity provider and is cheaper to retry.
	updated, err := w.profiles.UpdateProfile(ctx, payload)
	if err != nil {
		return nil, &PersistError{Err: err}
	}

	// Step 6: propagate credential changes in a fixed order: email
	// update, verification mail, then password.
	var propagationErr error
	if emailChanged {
		if err := w.creds.UpdateEmail(ctx, req.Email, req.OldPassword); err != nil {
			propagationErr = err
		} else if err := w.creds.SendEmailVerification(ctx); err != nil {
			propagationErr = err
		}
	}
	if propagationErr == nil && req.OldPassword != "" && req.NewPassword != "" {
		if err := w.creds.UpdatePassword(ctx, req.NewPassword); err != nil {
			propagationErr = err
		}
	}

	// Step 7: one atomic replacement; readers see the old profile or the
	// new one, never a half-merged value.
	merged := mergeProfile(current, payload, updated)
	w.cache.Replace(merged)

	if propagationErr != nil {
		return merged, &CredentialPropagationError{Err: propagationErr}
	}
	return merged, nil
}

// SubmitLocation is the reduced onboarding/location form: location plus
// the onboarding flag only, no sensitive fields, so the pipeline starts
// at the persistence step after a bounds check.
func (w *Workflow) SubmitLocation(ctx context.Context, loc models.Location) (*models.UserProfile, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer w.inFlight.Store(false)

	current, err := w.cache.Get()
	if err != nil {
		return nil, err
	}

	if !loc.Valid() {
		return nil, &ValidationError{Fields: map[string]string{
			"location": "Address and coordinates are required",
		}}
	}

	locCopy := loc
	payload := models.ProfilePayload{Location: &locCopy}
	if !current.Onboarded {
		onboarded := true
		payload.Onboarded = &onboarded
	}

	updated, err := w.profiles.UpdateProfile(ctx, payload)
	if err != nil {
		return nil, &PersistError{Err: err}
	}

	merged := mergeProfile(current, payload, updated)
	w.cache.Replace(merged)
	return merged, nil
}

// buildPayload collects only the fields that actually change. Repeating
// the resulting PATCH is safe.
func (w *Workflow) buildPayload(req models.ProfileEditRequest, current *models.UserProfile) models.ProfilePayload {
	var payload models.ProfilePayload

	if req.FirstName != current.FirstName {
		v := req.FirstName
		payload.FirstName = &v
	}
	if req.LastName != current.LastName {
		v := req.LastName
		payload.LastName = &v
	}
	if req.Email != current.Email {
		v := req.Email
		payload.Email = &v
	}
	if req.Location != nil {
		loc := *req.Location
		payload.Location = &loc
	}
	// Completing onboarding: the first saved location flips the flag,
	// and nothing ever flips it back.
	if !current.Onboarded && payload.Location != nil {
		onboarded := true
		payload.Onboarded = &onboarded
	}
	return payload
}

// mergeProfile overlays the submitted fields onto the cached profile.
// Server-reported bookkeeping fields win when present.
func mergeProfile(current *models.UserProfile, payload models.ProfilePayload, updated *models.UserProfile) *models.UserProfile {
	merged := current.Clone()

	if payload.FirstName != nil {
		merged.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		merged.LastName = *payload.LastName
	}
	if payload.Email != nil {
		merged.Email = *payload.Email
	}
	if payload.PhotoURL != nil {
		merged.PhotoURL = *payload.PhotoURL
	}
	if payload.Location != nil {
		loc := *payload.Location
		merged.Location = &loc
	}
	if payload.Onboarded != nil && *payload.Onboarded {
		merged.Onboarded = true
	}

	if updated != nil {
		merged.UpdatedAt = updated.UpdatedAt
		if updated.StorageUsageInMb > 0 {
			merged.StorageUsageInMb = updated.StorageUsageInMb
		}
		if updated.Plan != "" {
			merged.Plan = updated.Plan
		}
	}
	return merged
}
