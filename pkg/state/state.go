// Package state holds the client-side session state other packages read
// identity from: the device and, when signed in, the viewer.
package state

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/credentials"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

// User is the signed-in viewer.
type User struct {
	UserID int
}

// Auth is the identity slice of the state.
type Auth struct {
	DeviceID string
	// User is nil when nobody is signed in.
	User *User
}

// State is a snapshot of the session state.
type State struct {
	Auth Auth
}

// Reader gives read access to the current state.
type Reader interface {
	GetState() State
}

// Store is a concurrency-safe, in-memory Reader.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns a Store holding initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// GetState returns a copy of the current state.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Auth.User != nil {
		u := *st.Auth.User
		st.Auth.User = &u
	}
	return st
}

// Update applies fn to the state under the write lock.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// SignIn records a signed-in viewer.
func (s *Store) SignIn(userID int) {
	s.Update(func(st *State) { st.Auth.User = &User{UserID: userID} })
}

// SignOut clears the signed-in viewer.
func (s *Store) SignOut() {
	s.Update(func(st *State) { st.Auth.User = nil })
}

// Load builds a Store from the configured device id and saved credentials.
// A device id is generated and persisted on first use.
func Load() (*Store, error) {
	deviceID := config.GetString("device.id")
	if deviceID == "" {
		deviceID = uuid.NewString()
		if err := config.SetString("device.id", deviceID); err != nil {
			// The id still works for this session
			logger.Warn("Could not persist device id", "error", err)
		}
	}

	st := State{Auth: Auth{DeviceID: deviceID}}

	creds, err := credentials.Load()
	if err != nil {
		return nil, err
	}
	if creds != nil && creds.IsValid() {
		st.Auth.User = &User{UserID: creds.UserID}
	}

	return NewStore(st), nil
}
