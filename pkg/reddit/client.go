package reddit

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"redditactions/pkg/auth"
	"redditactions/pkg/config"
	apperrors "redditactions/pkg/errors"
	"redditactions/pkg/logger"
	"redditactions/pkg/models"
	"redditactions/pkg/ratelimit"
)

// Client talks to the Reddit OAuth API as a script app
type Client struct {
	cfg     config.RedditConfig
	creds   auth.RedditCredentials
	timeout time.Duration
	limiter ratelimit.Limiter
	logger  logger.Logger

	// base is used for the token request and wrapped by oauth2 afterwards
	base *http.Client
	rest *resty.Client

	username string
}

// NewClient creates a new Reddit API client. Nothing is sent until Authenticate.
func NewClient(cfg config.RedditConfig, creds auth.RedditCredentials, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &Client{
		cfg:     cfg,
		creds:   creds,
		timeout: timeout,
		limiter: limiter,
		logger:  log.WithField("service", "reddit"),
		base: &http.Client{
			Timeout:   timeout,
			Transport: &userAgentTransport{userAgent: cfg.UserAgent, base: http.DefaultTransport},
		},
	}
}

// Username returns the authenticated account name, empty before Authenticate
func (c *Client) Username() string {
	return c.username
}

// Authenticate obtains a bearer token with the password grant and checks it
// against /api/v1/me. Any failure is an auth error.
func (c *Client) Authenticate(ctx context.Context) error {
	conf := &oauth2.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  TokenURL(c.cfg.AuthURL),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.base)
	start := time.Now()
	token, err := conf.PasswordCredentialsToken(tokenCtx, c.creds.Username, c.creds.Password)
	if err != nil {
		c.logger.WithError(err).Error("Token request failed")
		return apperrors.New(apperrors.KindAuth, "reddit.token", "password grant rejected", err)
	}
	c.logger.DebugWithFields("Obtained access token", map[string]interface{}{
		"duration": time.Since(start),
		"expiry":   token.Expiry,
	})

	// the token source keeps the background context so a long run is not tied
	// to a request-scoped one
	baseCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	source := oauth2.ReuseTokenSource(token, &passwordTokenSource{
		ctx:    baseCtx,
		conf:   conf,
		creds:  c.creds,
		logger: c.logger,
	})
	c.rest = c.newRestClient(oauth2.NewClient(baseCtx, source))

	var me models.Identity
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&me).
		ExpectContentType("application/json").
		Get(MeEndpoint)
	if err != nil {
		c.rest = nil
		return apperrors.New(apperrors.KindAuth, "reddit.me", "identity request failed", err)
	}
	if !resp.IsSuccess() {
		c.rest = nil
		return apperrors.FromStatus(apperrors.KindAuth, "reddit.me", resp.StatusCode(), resp.String())
	}

	c.username = me.Name
	if c.username == "" {
		c.username = c.creds.Username
	}

	c.logger.InfoWithFields("Authenticated with Reddit", map[string]interface{}{
		"username": c.username,
	})
	return nil
}

func (c *Client) newRestClient(httpClient *http.Client) *resty.Client {
	rest := resty.NewWithClient(httpClient).
		SetBaseURL(c.cfg.APIURL).
		SetTimeout(c.timeout).
		SetHeader("User-Agent", c.cfg.UserAgent)

	rest.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		return c.limiter.Wait(r.Context())
	})
	rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.LogRequest(c.logger, "reddit", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
		return nil
	})

	return rest
}

// Saved returns a lazy iterator over the authenticated user's saved
// submissions. Pages are fetched as Next is called.
func (c *Client) Saved() models.ItemIterator {
	return &savedIterator{client: c, pageSize: c.cfg.PageSize}
}

// Unsave removes item from the saved list
func (c *Client) Unsave(ctx context.Context, item models.SavedItem) error {
	const op = "reddit.unsave"
	if c.rest == nil {
		return apperrors.New(apperrors.KindUnsave, op, "client is not authenticated", nil).WithItem(item.ID)
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{"id": item.Fullname}).
		Post(UnsaveEndpoint)
	if err != nil {
		return apperrors.New(apperrors.KindUnsave, op, "request failed", err).WithItem(item.ID)
	}
	if !resp.IsSuccess() {
		return apperrors.FromStatus(apperrors.KindUnsave, op, resp.StatusCode(), resp.String()).WithItem(item.ID)
	}
	return nil
}

// fetchPage requests one page of the saved listing
func (c *Client) fetchPage(ctx context.Context, after string, limit int) (*models.ListingResponse, error) {
	const op = "reddit.saved"
	if c.rest == nil {
		return nil, apperrors.New(apperrors.KindFetch, op, "client is not authenticated", nil)
	}

	var listing models.ListingResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(SavedParams(after, limit)).
		SetResult(&listing).
		ExpectContentType("application/json").
		Get(SavedPath(c.username))
	if err != nil {
		return nil, apperrors.New(apperrors.KindFetch, op, "request failed", err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.FromStatus(apperrors.KindFetch, op, resp.StatusCode(), resp.String())
	}
	return &listing, nil
}

// passwordTokenSource runs the password grant again when the current token
// expires. Script apps get no refresh token.
type passwordTokenSource struct {
	ctx    context.Context
	conf   *oauth2.Config
	creds  auth.RedditCredentials
	logger logger.Logger
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	s.logger.Debug("Access token expired, requesting a new one")
	return s.conf.PasswordCredentialsToken(s.ctx, s.creds.Username, s.creds.Password)
}

// userAgentTransport sets the User-Agent Reddit requires on every request,
// including the token request made by oauth2
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
