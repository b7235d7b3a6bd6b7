// Package aroundu assembles the client core: identity provider, remote
// profile client, session cache, the profile edit workflow, and the
// location capture flow, wired from one Config.
package aroundu

import (
	"github.com/aroundu/app/internal/config"
	"github.com/aroundu/app/internal/geo"
	"github.com/aroundu/app/internal/identity"
	"github.com/aroundu/app/internal/profileapi"
	"github.com/aroundu/app/internal/session"
	"github.com/aroundu/app/internal/upload"
	"github.com/aroundu/app/internal/usercache"
	"github.com/aroundu/app/internal/workflow"
)

// App is one signed-in client instance.
type App struct {
	Identity *identity.FirebaseClient
	Profiles *profileapi.Client
	Maps     *geo.MapsClient
	Cache    *usercache.Cache
	Session  *session.Manager
	Workflow *workflow.Workflow
}

// New wires the client core from one Config.
func New(cfg *config.Config) *App {
	provider := identity.NewFirebaseClient(cfg.FirebaseAPIKey)
	cache := usercache.New()

	profiles := profileapi.NewClient(cfg.ProfileAPIBase, func() string {
		if sess := provider.CurrentSession(); sess != nil {
			return sess.IDToken
		}
		return ""
	})

	var uploader upload.Uploader
	if cfg.StorageBucket != "" {
		uploader = upload.NewGCSUploader(cfg.StorageBucket)
	} else {
		uploader = upload.NewLocalUploader(cfg.UploadDir)
	}

	flow := workflow.New(provider, provider, uploader, profiles, cache)

	return &App{
		Identity: provider,
		Profiles: profiles,
		Maps:     geo.NewMapsClient(cfg.MapsAPIKey),
		Cache:    cache,
		Session:  session.NewManager(provider, profiles, cache),
		Workflow: flow,
	}
}

// NewCapture starts a fresh location capture flow bound to this app's
// workflow. One Capture per edit screen. The locator may be nil when
// the host has no geolocation capability; device-location requests
// then report ErrGeolocationUnavailable.
func (a *App) NewCapture(locator geo.DeviceLocator) *geo.Capture {
	return geo.NewCapture(a.Maps, locator, a.Workflow)
}
