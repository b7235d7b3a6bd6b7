package geo

import (
	"context"
	"errors"
	"time"
)

// geolocationTimeout bounds a one-shot device position read. Cached
// readings are never accepted; every call asks the device again.
const geolocationTimeout = 5 * time.Second

var ErrGeolocationUnavailable = errors.New("geolocation is not available")

// Coordinates is a raw device position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DeviceLocator reads the device's current position. Implementations
// must not serve a stale fix.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// Locate performs one position read with the fixed timeout applied.
func Locate(ctx context.Context, locator DeviceLocator) (Coordinates, error) {
	if locator == nil {
		return Coordinates{}, ErrGeolocationUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, geolocationTimeout)
	defer cancel()

	return locator.CurrentPosition(ctx)
}
