package auth

import (
	"os"
	"strings"
)

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// EnvironmentStore reads Credentials from environment variables
type EnvironmentStore struct {
	lookup LookupFunc
}

// NewEnvironmentStore creates a store backed by the process environment
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{lookup: os.LookupEnv}
}

// NewEnvironmentStoreWithLookup creates a store backed by an arbitrary lookup, for tests
func NewEnvironmentStoreWithLookup(lookup LookupFunc) *EnvironmentStore {
	return &EnvironmentStore{lookup: lookup}
}

// Retrieve reads all six variables. Missing ones are reported together
// so the user can fix the environment in one go.
func (e *EnvironmentStore) Retrieve() (*Credentials, error) {
	creds := &Credentials{
		Reddit: RedditCredentials{
			ClientID:     e.get(EnvRedditClientID),
			ClientSecret: e.get(EnvRedditClientSecret),
			Username:     e.get(EnvRedditUsername),
			Password:     e.get(EnvRedditPassword),
		},
		Instapaper: InstapaperCredentials{
			Username: e.get(EnvInstapaperUser),
			Password: e.get(EnvInstapaperPass),
		},
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

func (e *EnvironmentStore) get(key string) string {
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}

// LoadFromEnv is shorthand for NewEnvironmentStore().Retrieve()
func LoadFromEnv() (*Credentials, error) {
	return NewEnvironmentStore().Retrieve()
}
