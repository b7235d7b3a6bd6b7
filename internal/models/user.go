package models

import "time"

// Plan is the subscription tier of an account.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Location is a resolved address with coordinates.
type Location struct {
	Address   string  `json:"address" bson:"address"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Valid reports whether the coordinates are in range and the address is usable.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180 &&
		len(l.Address) >= 6
}

// UserProfile is the signed-in user's profile, keyed by Firebase UID.
// One instance is cached per session and replaced wholesale on each
// successful edit.
type UserProfile struct {
	ID               string    `json:"id" bson:"user_id"`
	FirstName        string    `json:"firstName" bson:"first_name"`
	LastName         string    `json:"lastName" bson:"last_name"`
	Email            string    `json:"email" bson:"email"`
	PhotoURL         string    `json:"photoURL,omitempty" bson:"photo_url,omitempty"`
	Location         *Location `json:"location,omitempty" bson:"location,omitempty"`
	Onboarded        bool      `json:"isOnboarded" bson:"is_onboarded"`
	Plan             Plan      `json:"plan" bson:"plan"`
	StorageUsageInMb float64   `json:"storageUsageInMb" bson:"storage_usage_mb"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a copy safe to mutate without affecting the cached value.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp
}
