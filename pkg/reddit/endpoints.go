package reddit

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// TokenEndpoint is relative to the auth base URL (www.reddit.com)
	TokenEndpoint = "/api/v1/access_token"

	// MeEndpoint returns the identity of the authenticated user
	MeEndpoint = "/api/v1/me"

	// SavedEndpoint is the pattern for a user's saved listing
	SavedEndpoint = "/user/%s/saved"

	// UnsaveEndpoint removes a thing from the saved list
	UnsaveEndpoint = "/api/unsave"

	// DefaultPageSize is used when the configured page size is out of range
	DefaultPageSize = 100

	// MaxPageSize is the largest limit Reddit accepts on listings
	MaxPageSize = 100
)

// TokenURL joins the auth base URL and the token endpoint
func TokenURL(authBaseURL string) string {
	return strings.TrimRight(authBaseURL, "/") + TokenEndpoint
}

// SavedPath returns the saved listing path for username
func SavedPath(username string) string {
	return fmt.Sprintf(SavedEndpoint, url.PathEscape(username))
}

// SavedParams builds the query for one page of the saved listing
func SavedParams(after string, limit int) map[string]string {
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	params := map[string]string{
		"limit":    fmt.Sprintf("%d", limit),
		"raw_json": "1",
	}
	if after != "" {
		params["after"] = after
	}
	return params
}
