package auth

import (
	"fmt"
	"strings"

	apperrors "redditactions/pkg/errors"
)

// Credentials holds every secret needed for a run. They are read from the
// environment only and are never written to disk or logged unmasked.
type Credentials struct {
	Reddit     RedditCredentials
	Instapaper InstapaperCredentials
}

// RedditCredentials are the script-app client and the account whose saved
// items are processed
type RedditCredentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// InstapaperCredentials are used for HTTP basic auth against the Simple API
type InstapaperCredentials struct {
	Username string
	Password string
}

// Environment variable names
const (
	EnvRedditClientID     = "REDDIT_CLIENT_ID"
	EnvRedditClientSecret = "REDDIT_CLIENT_SECRET"
	EnvRedditUsername     = "REDDIT_USERNAME"
	EnvRedditPassword     = "REDDIT_PASSWORD"
	EnvInstapaperUser     = "INSTAPAPER_USER"
	EnvInstapaperPass     = "INSTAPAPER_PASS"
)

// Validate reports every missing field in one error
func (c *Credentials) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{EnvRedditClientID, c.Reddit.ClientID},
		{EnvRedditClientSecret, c.Reddit.ClientSecret},
		{EnvRedditUsername, c.Reddit.Username},
		{EnvRedditPassword, c.Reddit.Password},
		{EnvInstapaperUser, c.Instapaper.Username},
		{EnvInstapaperPass, c.Instapaper.Password},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return apperrors.New(apperrors.KindConfig, "auth.credentials",
		fmt.Sprintf("missing required environment variables: %s", strings.Join(missing, ", ")), nil)
}

// Sanitize returns a copy safe to print or log
func (c *Credentials) Sanitize() Credentials {
	return Credentials{
		Reddit: RedditCredentials{
			ClientID:     maskString(c.Reddit.ClientID),
			ClientSecret: maskSecret(c.Reddit.ClientSecret),
			Username:     c.Reddit.Username,
			Password:     maskSecret(c.Reddit.Password),
		},
		Instapaper: InstapaperCredentials{
			Username: c.Instapaper.Username,
			Password: maskSecret(c.Instapaper.Password),
		},
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return maskSecret(s)
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
