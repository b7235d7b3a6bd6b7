package aroundu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroundu/app/internal/config"
	"github.com/aroundu/app/internal/geo"
)

func TestNewWiresClientCore(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	cfg := config.Load()
	cfg.FirebaseAPIKey = "test-key"
	cfg.MapsAPIKey = "maps-key"
	cfg.ProfileAPIBase = "http://localhost:8080/api"

	app := New(cfg)
	require.NotNil(t, app)
	assert.NotNil(t, app.Identity)
	assert.NotNil(t, app.Profiles)
	assert.NotNil(t, app.Maps)
	assert.NotNil(t, app.Cache)
	assert.NotNil(t, app.Session)
	assert.NotNil(t, app.Workflow)

	assert.False(t, app.Cache.SignedIn())

	capture := app.NewCapture(nil)
	require.NotNil(t, capture)
	assert.Equal(t, geo.StateIdle, capture.State())
}
