// Package instapaper is a client for the Instapaper Simple API.
package instapaper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"redditactions/pkg/auth"
	"redditactions/pkg/config"
	apperrors "redditactions/pkg/errors"
	"redditactions/pkg/logger"
	"redditactions/pkg/models"
)

const (
	AuthenticateEndpoint = "/api/authenticate"
	AddEndpoint          = "/api/add"
)

// statusMessages are the meanings the Simple API documents for its status codes
var statusMessages = map[int]string{
	http.StatusBadRequest:          "bad request or exceeded the rate limit",
	http.StatusForbidden:           "invalid username or password",
	http.StatusInternalServerError: "the service encountered an error",
}

// Client sends saved items to Instapaper using HTTP basic auth
type Client struct {
	rest   *resty.Client
	logger logger.Logger
}

// NewClient creates a new Instapaper client
func NewClient(cfg config.InstapaperConfig, creds auth.InstapaperCredentials, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("service", "instapaper")

	rest := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(timeout).
		SetBasicAuth(creds.Username, creds.Password)

	rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.LogRequest(log, "instapaper", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
		return nil
	})

	return &Client{rest: rest, logger: log}
}

// Authenticate verifies the credentials. A rejection is an auth error.
func (c *Client) Authenticate(ctx context.Context) error {
	const op = "instapaper.authenticate"

	resp, err := c.rest.R().SetContext(ctx).Get(AuthenticateEndpoint)
	if err != nil {
		return apperrors.New(apperrors.KindAuth, op, "request failed", err)
	}
	if !resp.IsSuccess() {
		return statusError(apperrors.KindAuth, op, resp.StatusCode())
	}

	c.logger.Info("Authenticated with Instapaper")
	return nil
}

// Add saves item's URL with its title and a selection naming the subreddit
func (c *Client) Add(ctx context.Context, item models.SavedItem) error {
	const op = "instapaper.add"

	params := map[string]string{"url": item.URL}
	if item.Title != "" {
		params["title"] = item.Title
	}
	if sel := Selection(item); sel != "" {
		params["selection"] = sel
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(AddEndpoint)
	if err != nil {
		return apperrors.New(apperrors.KindForward, op, "request failed", err).WithItem(item.ID)
	}
	if !resp.IsSuccess() {
		return statusError(apperrors.KindForward, op, resp.StatusCode()).WithItem(item.ID)
	}
	return nil
}

// Selection is the description stored with a bookmark
func Selection(item models.SavedItem) string {
	switch {
	case item.Subreddit != "" && item.Title != "":
		return fmt.Sprintf("From r/%s: \"%s\"", item.Subreddit, item.Title)
	case item.Subreddit != "":
		return fmt.Sprintf("From r/%s", item.Subreddit)
	default:
		return ""
	}
}

func statusError(kind apperrors.Kind, op string, status int) *apperrors.Error {
	msg, ok := statusMessages[status]
	if !ok {
		msg = http.StatusText(status)
	}
	if status == http.StatusForbidden && kind == apperrors.KindAuth {
		msg = "credentials rejected: " + msg
	}
	return &apperrors.Error{Kind: kind, Op: op, Code: status, Message: msg}
}
