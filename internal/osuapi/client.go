package osuapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	TokenURL = "https://osu.ppy.sh/oauth/token"
	AuthURL  = "https://osu.ppy.sh/oauth/authorize"
	APIBase  = "https://osu.ppy.sh/api/v2"

	// The match endpoint returns at most 100 events per page; older pages
	// are fetched with before=<earliest event id>.
	eventPageSize = 100
	maxEventPages = 20
)

// Client talks to the osu! API v2 with an app token obtained via the
// client-credentials grant. All requests share a rate limiter so weekly
// ingests stay inside the public API allowance.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger

	baseURL  string
	tokenURL string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(clientID, clientSecret string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Every(time.Second), 2),
		logger:       slog.Default(),
		baseURL:      APIBase,
		tokenURL:     TokenURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) appToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {"public"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request failed: %d %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access_token")
	}

	c.token = tok.AccessToken
	// Refresh a minute early so in-flight requests never use a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// FetchMatch retrieves a full match, following the before-cursor until all
// event pages have been seen.
func (c *Client) FetchMatch(ctx context.Context, matchID int64) (*MatchResponse, error) {
	match, err := c.fetchMatchPage(ctx, matchID, 0)
	if err != nil {
		return nil, err
	}

	events := match.Events
	seen := make(map[int64]bool, len(events))
	for _, e := range events {
		seen[e.ID] = true
	}

	for page := 1; page < maxEventPages; page++ {
		if len(events) == 0 || len(events)%eventPageSize != 0 {
			break
		}
		earliest := events[0].ID
		for _, e := range events {
			if e.ID < earliest {
				earliest = e.ID
			}
		}

		pageResp, err := c.fetchMatchPage(ctx, matchID, earliest)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, e := range pageResp.Events {
			if !seen[e.ID] {
				seen[e.ID] = true
				events = append(events, e)
				added++
			}
		}
		c.logger.Debug("fetched match page", "match", matchID, "page", page+1, "events", added)
		if added == 0 || len(pageResp.Events) < eventPageSize {
			break
		}
	}

	match.Events = events
	return match, nil
}

func (c *Client) fetchMatchPage(ctx context.Context, matchID, before int64) (*MatchResponse, error) {
	token, err := c.appToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/matches/%d?limit=%d", c.baseURL, matchID, eventPageSize)
	if before > 0 {
		u += fmt.Sprintf("&before=%d", before)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch match %d: %w", matchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch match %d: %d %s", matchID, resp.StatusCode, string(body))
	}

	var match MatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		return nil, fmt.Errorf("decode match %d: %w", matchID, err)
	}
	return &match, nil
}

// ExchangeCode trades an authorization code for user tokens (login flow).
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenPair, error) {
	return c.userToken(ctx, url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	})
}

func (c *Client) userToken(ctx context.Context, form url.Values) (*TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token exchange failed: %d %s", resp.StatusCode, string(body))
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// FetchMe returns the profile behind a user access token.
func (c *Client) FetchMe(ctx context.Context, accessToken string) (*Me, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch me: status %d", resp.StatusCode)
	}

	var me Me
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, err
	}
	return &me, nil
}
