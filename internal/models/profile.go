package models

import (
	"io"
	"net/mail"
	"strings"
)

const (
	// MaxPhotoSizeBytes caps profile photo uploads at 8MB.
	MaxPhotoSizeBytes int64 = 8 * 1024 * 1024
)

var acceptedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PhotoFile is a pending profile photo attached to an edit request.
type PhotoFile struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// ProfilePayload is the partial-update body of the profile PATCH endpoint.
// Nil fields are left untouched by the server.
type ProfilePayload struct {
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Email     *string   `json:"email,omitempty"`
	PhotoURL  *string   `json:"photoURL,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Onboarded *bool     `json:"isOnboarded,omitempty"`
}

// ProfileEditRequest is one profile form submission. It exists only for the
// duration of a single Submit and is never persisted.
type ProfileEditRequest struct {
	FirstName       string
	LastName        string
	Email           string
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
	Photo           *PhotoFile
	Location        *Location
}

// Validate applies the static form rules. It returns field-scoped messages
// and performs no I/O.
func (r *ProfileEditRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.FirstName) == "" {
		errors["firstName"] = "Enter a valid First name"
	}
	if strings.TrimSpace(r.LastName) == "" {
		errors["lastName"] = "Enter a valid Last name"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errors["email"] = "Invalid email address"
	}

	if r.OldPassword != "" || r.NewPassword != "" || r.ConfirmPassword != "" {
		if r.OldPassword == "" {
			errors["oldPassword"] = "Current password is required"
		}
		if len(r.NewPassword) < 6 {
			errors["newPassword"] = "Password must be at least 6 characters"
		}
		if r.NewPassword != r.ConfirmPassword {
			errors["confirmPassword"] = "Passwords must match"
		}
	}

	if r.Photo != nil {
		if r.Photo.Size > MaxPhotoSizeBytes {
			errors["photo"] = "Max file size is 8MB"
		} else if !acceptedPhotoTypes[r.Photo.ContentType] {
			errors["photo"] = "Only .jpg, .png, and .webp formats are supported"
		}
	}

	if r.Location != nil {
		if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
			errors["location"] = "Latitude must be between -90 and 90"
		} else if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
			errors["location"] = "Longitude must be between -180 and 180"
		} else if len(r.Location.Address) < 6 {
			errors["location"] = "Address is required"
		}
	}

	return errors
}

// PasswordChangeRequested reports whether either password field was filled in.
func (r *ProfileEditRequest) PasswordChangeRequested() bool {
	return r.OldPassword != "" || r.NewPassword != ""
}
