package usercache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroundu/app/internal/models"
)

func TestCacheLifecycle(t *testing.T) {
	c := New()

	_, err := c.Get()
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.False(t, c.SignedIn())

	c.Replace(&models.UserProfile{ID: "uid-1", Email: "a@x.com"})
	assert.True(t, c.SignedIn())

	got, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	c.Clear()
	assert.False(t, c.SignedIn())
	_, err = c.Get()
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestCacheGetReturnsCopy(t *testing.T) {
	c := New()
	c.Replace(&models.UserProfile{
		ID:       "uid-1",
		Email:    "a@x.com",
		Location: &models.Location{Address: "12 Market Street", Latitude: 1, Longitude: 2},
	})

	first, err := c.Get()
	require.NoError(t, err)
	first.Email = "mutated@x.com"
	first.Location.Address = "mutated"

	second, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", second.Email)
	assert.Equal(t, "12 Market Street", second.Location.Address)
}

func TestCacheReplaceDetachesFromCaller(t *testing.T) {
	c := New()
	profile := &models.UserProfile{ID: "uid-1", Email: "a@x.com"}
	c.Replace(profile)

	profile.Email = "mutated@x.com"

	got, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestCacheConcurrentReadersSeeWholeValues(t *testing.T) {
	c := New()
	c.Replace(&models.UserProfile{FirstName: "Alice", LastName: "Nguyen"})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				c.Replace(&models.UserProfile{FirstName: "Alice", LastName: "Nguyen"})
			} else {
				c.Replace(&models.UserProfile{FirstName: "Bob", LastName: "Okafor"})
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			got, err := c.Get()
			if err != nil {
				continue
			}
			// Either full value, never a mix of the two.
			valid := (got.FirstName == "Alice" && got.LastName == "Nguyen") ||
				(got.FirstName == "Bob" && got.LastName == "Okafor")
			assert.True(t, valid, "observed torn profile: %+v", got)
		}
	}()

	wg.Wait()
}
