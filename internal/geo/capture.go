package geo

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aroundu/app/internal/models"
)

// State of one location capture flow.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateReady
	StateSubmitting
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

var (
	ErrNotReady          = errors.New("no location selected yet")
	ErrAlreadySubmitting = errors.New("a confirmation is already in progress")
)

// Geocoder is the slice of the mapping provider the capture flow needs.
type Geocoder interface {
	GeocodePlace(ctx context.Context, placeID string) (*models.Location, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Location, error)
}

// LocationSubmitter persists a confirmed location; the workflow's
// reduced location form implements it.
type LocationSubmitter interface {
	SubmitLocation(ctx context.Context, loc models.Location) (*models.UserProfile, error)
}

// Capture is the shared selection cell behind the address input, the
// locate button, and the map click path. All three write the same
// {address, coordinates} shape; the last writer wins. One Capture
// belongs to one edit screen.
type Capture struct {
	mu        sync.Mutex
	state     State
	selection *models.Location

	geocoder Geocoder
	locator  DeviceLocator
	flow     LocationSubmitter
}

func NewCapture(geocoder Geocoder, locator DeviceLocator, flow LocationSubmitter) *Capture {
	return &Capture{
		state:    StateIdle,
		geocoder: geocoder,
		locator:  locator,
		flow:     flow,
	}
}

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the currently chosen location, or nil.
func (c *Capture) Selection() *models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return nil
	}
	loc := *c.selection
	return &loc
}

// Begin marks the flow as interacting without a selection yet.
func (c *Capture) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle || c.state == StateSaved {
		c.state = StateSelecting
		c.selection = nil
	}
}

// PickSuggestion resolves an autocomplete prediction into the selection.
func (c *Capture) PickSuggestion(ctx context.Context, placeID string) error {
	c.setSelecting()

	loc, err := c.geocoder.GeocodePlace(ctx, placeID)
	if err != nil {
		return err
	}
	c.setSelection(loc)
	return nil
}

// UseDeviceLocation reads the device position and reverse-geocodes it.
// A failed reverse lookup keeps the flow in Selecting; the user can
// simply pick another point.
func (c *Capture) UseDeviceLocation(ctx context.Context) error {
	c.setSelecting()

	pos, err := Locate(ctx, c.locator)
	if err != nil {
		return err
	}
	return c.resolvePoint(ctx, pos.Latitude, pos.Longitude)
}

// PickMapPoint reverse-geocodes a clicked map coordinate.
func (c *Capture) PickMapPoint(ctx context.Context, lat, lng float64) error {
	c.setSelecting()
	return c.resolvePoint(ctx, lat, lng)
}

func (c *Capture) resolvePoint(ctx context.Context, lat, lng float64) error {
	loc, err := c.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		// Non-blocking: stay in Selecting so the user can retry.
		log.Printf("[geo] reverse geocode failed for %f,%f: %v", lat, lng, err)
		return nil
	}
	c.setSelection(loc)
	return nil
}

// Confirm submits the selected location through the reduced profile
// workflow. On failure the flow returns to Ready with the selection
// intact.
func (c *Capture) Confirm(ctx context.Context) (*models.UserProfile, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrAlreadySubmitting
	}
	if c.state != StateReady || c.selection == nil {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	loc := *c.selection
	c.state = StateSubmitting
	c.mu.Unlock()

	profile, err := c.flow.SubmitLocation(ctx, loc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateReady
		return nil, err
	}
	c.state = StateSaved
	return profile, nil
}

func (c *Capture) setSelecting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSubmitting {
		c.state = StateSelecting
	}
}

func (c *Capture) setSelection(loc *models.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.selection = loc
	c.state = StateReady
}
