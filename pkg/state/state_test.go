package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/credentials"
)

func TestStore_GetStateReturnsCopy(t *testing.T) {
	store := NewStore(State{Auth: Auth{DeviceID: "device-1", User: &User{UserID: 5}}})

	snapshot := store.GetState()
	snapshot.Auth.User.UserID = 99

	assert.Equal(t, 5, store.GetState().Auth.User.UserID)
}

func TestStore_SignInSignOut(t *testing.T) {
	store := NewStore(State{Auth: Auth{DeviceID: "device-1"}})
	assert.Nil(t, store.GetState().Auth.User)

	store.SignIn(42)
	require.NotNil(t, store.GetState().Auth.User)
	assert.Equal(t, 42, store.GetState().Auth.User.UserID)

	store.SignOut()
	assert.Nil(t, store.GetState().Auth.User)
	assert.Equal(t, "device-1", store.GetState().Auth.DeviceID)
}

func TestLoad_GeneratesAndPersistsDeviceID(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.Init(configPath))

	store, err := Load()
	require.NoError(t, err)
	deviceID := store.GetState().Auth.DeviceID
	assert.NotEmpty(t, deviceID)
	assert.Nil(t, store.GetState().Auth.User)

	// Re-reading the config file yields the same device
	require.NoError(t, config.Init(configPath))
	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, deviceID, again.GetState().Auth.DeviceID)
}

func TestLoad_SignedInFromCredentials(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("device.id", "device-abc")
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
		UserID:      777,
	}))

	store, err := Load()
	require.NoError(t, err)

	st := store.GetState()
	assert.Equal(t, "device-abc", st.Auth.DeviceID)
	require.NotNil(t, st.Auth.User)
	assert.Equal(t, 777, st.Auth.User.UserID)
}

func TestLoad_ExpiredCredentialsAreSignedOut(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("device.id", "device-abc")
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(-time.Hour),
		UserID:      777,
	}))

	store, err := Load()
	require.NoError(t, err)
	assert.Nil(t, store.GetState().Auth.User)
}
