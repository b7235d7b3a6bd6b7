package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aroundu/app/internal/models"
)

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) GeocodePlace(ctx context.Context, placeID string) (*models.Location, error) {
	args := m.Called(ctx, placeID)
	if loc := args.Get(0); loc != nil {
		return loc.(*models.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Location, error) {
	args := m.Called(ctx, lat, lng)
	if loc := args.Get(0); loc != nil {
		return loc.(*models.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLocator struct {
	mock.Mock
}

func (m *mockLocator) CurrentPosition(ctx context.Context) (Coordinates, error) {
	args := m.Called(ctx)
	return args.Get(0).(Coordinates), args.Error(1)
}

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) SubmitLocation(ctx context.Context, loc models.Location) (*models.UserProfile, error) {
	args := m.Called(ctx, loc)
	if p := args.Get(0); p != nil {
		return p.(*models.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func sydney() *models.Location {
	return &models.Location{Address: "12 Market Street, Sydney", Latitude: -33.87, Longitude: 151.21}
}

func TestCaptureHappyPath(t *testing.T) {
	geocoder := new(mockGeocoder)
	flow := new(mockSubmitter)
	c := NewCapture(geocoder, nil, flow)

	assert.Equal(t, StateIdle, c.State())

	c.Begin()
	assert.Equal(t, StateSelecting, c.State())
	assert.Nil(t, c.Selection())

	geocoder.On("GeocodePlace", mock.Anything, "place-123").Return(sydney(), nil)
	require.NoError(t, c.PickSuggestion(context.Background(), "place-123"))
	assert.Equal(t, StateReady, c.State())
	require.NotNil(t, c.Selection())
	assert.Equal(t, *sydney(), *c.Selection())

	flow.On("SubmitLocation", mock.Anything, *sydney()).
		Return(&models.UserProfile{Onboarded: true, Location: sydney()}, nil)

	profile, err := c.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, profile.Onboarded)
	assert.Equal(t, StateSaved, c.State())
}

func TestCaptureConfirmWithoutSelection(t *testing.T) {
	c := NewCapture(new(mockGeocoder), nil, new(mockSubmitter))

	_, err := c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)

	c.Begin()
	_, err = c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCaptureLastWriterWins(t *testing.T) {
	geocoder := new(mockGeocoder)
	c := NewCapture(geocoder, nil, new(mockSubmitter))
	c.Begin()

	first := sydney()
	second := &models.Location{Address: "5 Queen Street, Melbourne", Latitude: -37.81, Longitude: 144.96}

	geocoder.On("GeocodePlace", mock.Anything, "place-1").Return(first, nil)
	geocoder.On("ReverseGeocode", mock.Anything, -37.81, 144.96).Return(second, nil)

	require.NoError(t, c.PickSuggestion(context.Background(), "place-1"))
	require.NoError(t, c.PickMapPoint(context.Background(), -37.81, 144.96))

	require.NotNil(t, c.Selection())
	assert.Equal(t, *second, *c.Selection())
	assert.Equal(t, StateReady, c.State())
}

func TestCaptureReverseGeocodeFailureIsNonBlocking(t *testing.T) {
	geocoder := new(mockGeocoder)
	c := NewCapture(geocoder, nil, new(mockSubmitter))
	c.Begin()

	geocoder.On("ReverseGeocode", mock.Anything, 1.0, 2.0).Return(nil, errors.New("quota exceeded"))

	err := c.PickMapPoint(context.Background(), 1.0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, StateSelecting, c.State())
	assert.Nil(t, c.Selection())
}

func TestCaptureUseDeviceLocation(t *testing.T) {
	geocoder := new(mockGeocoder)
	locator := new(mockLocator)
	c := NewCapture(geocoder, locator, new(mockSubmitter))

	locator.On("CurrentPosition", mock.Anything).Return(Coordinates{Latitude: -33.87, Longitude: 151.21}, nil)
	geocoder.On("ReverseGeocode", mock.Anything, -33.87, 151.21).Return(sydney(), nil)

	require.NoError(t, c.UseDeviceLocation(context.Background()))
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, *sydney(), *c.Selection())
}

func TestCaptureDeviceLocationUnavailable(t *testing.T) {
	c := NewCapture(new(mockGeocoder), nil, new(mockSubmitter))

	err := c.UseDeviceLocation(context.Background())
	assert.ErrorIs(t, err, ErrGeolocationUnavailable)
	assert.Equal(t, StateSelecting, c.State())
}

func TestCaptureConfirmFailureReturnsToReady(t *testing.T) {
	geocoder := new(mockGeocoder)
	flow := new(mockSubmitter)
	c := NewCapture(geocoder, nil, flow)

	geocoder.On("GeocodePlace", mock.Anything, "place-1").Return(sydney(), nil)
	require.NoError(t, c.PickSuggestion(context.Background(), "place-1"))

	flow.On("SubmitLocation", mock.Anything, *sydney()).
		Return(nil, errors.New("profile api unavailable")).Once()

	_, err := c.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateReady, c.State())
	require.NotNil(t, c.Selection())

	// The selection survives; the next confirm can succeed.
	flow.On("SubmitLocation", mock.Anything, *sydney()).
		Return(&models.UserProfile{Onboarded: true}, nil).Once()

	_, err = c.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaved, c.State())
}

func TestCaptureConcurrentConfirmRejected(t *testing.T) {
	geocoder := new(mockGeocoder)
	flow := new(mockSubmitter)
	c := NewCapture(geocoder, nil, flow)

	geocoder.On("GeocodePlace", mock.Anything, "place-1").Return(sydney(), nil)
	require.NoError(t, c.PickSuggestion(context.Background(), "place-1"))

	release := make(chan struct{})
	started := make(chan struct{})
	flow.On("SubmitLocation", mock.Anything, *sydney()).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(&models.UserProfile{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Confirm(context.Background())
		done <- err
	}()

	<-started
	_, err := c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitting)

	close(release)
	require.NoError(t, <-done)
}
