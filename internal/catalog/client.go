package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-meal-agent/internal/sysutil"
)

// Searcher performs a ranked lookup against one catalog partition.
type Searcher interface {
	Search(ctx context.Context, query string, partition Partition, cred Credential) ([]Food, error)
}

// Writer persists a batch of servings to the remote food diary.
type Writer interface {
	SaveServings(ctx context.Context, cred Credential, entries []ServingEntry) error
}

// Authenticator exchanges a username/password pair for an opaque credential.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (Credential, error)
}

// Client is the HTTP implementation of the catalog boundary. Outbound calls
// are throttled by a shared token bucket so a burst of partition fan-outs
// cannot hammer the remote service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Logger     zerolog.Logger
}

// NewClient builds a Client with sane defaults for any zero-valued field.
func NewClient(baseURL string, rps float64, burst int, logger zerolog.Logger) *Client {
	if rps <= 0 {
		rps = 10
	}
	if burst < 1 {
		burst = 5
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		Logger:     logger,
	}
}

type searchResponse struct {
	Result string `json:"result"`
	Foods  []Food `json:"foods"`
	Error  string `json:"error,omitempty"`
}

type writeRequest struct {
	Servings []ServingEntry `json:"servings"`
}

type writeResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Result string `json:"result"`
	Token  string `json:"token"`
	Secret string `json:"secret"`
	Error  string `json:"error,omitempty"`
}

// Search queries a single partition and returns its ranked foods. The
// partition tag and query travel as URL parameters; the credential pair as
// headers.
func (c *Client) Search(ctx context.Context, query string, partition Partition, cred Credential) ([]Food, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/foods/search?query=%s&tab=%s",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(string(partition)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req, cred)

	var out searchResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("catalog search (%s): %w", partition, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("catalog search (%s): %s", partition, out.Error)
	}
	return out.Foods, nil
}

// SaveServings writes a batch of servings. The remote result field signals
// success; anything else is surfaced as an error for the caller to retry.
func (c *Client) SaveServings(ctx context.Context, cred Credential, entries []ServingEntry) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(writeRequest{Servings: entries})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/diary/servings", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, cred)

	var out writeResponse
	if err := c.do(req, &out); err != nil {
		return fmt.Errorf("catalog write: %w", err)
	}
	if out.Error != "" || out.Result != "ok" {
		return fmt.Errorf("catalog write rejected: %s", sysutil.FirstNonEmpty(out.Error, out.Result))
	}
	return nil
}

// Login exchanges the user's credential pair for the opaque catalog tokens.
func (c *Client) Login(ctx context.Context, username, password string) (Credential, error) {
	if err := c.wait(ctx); err != nil {
		return Credential{}, err
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return Credential{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return Credential{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out loginResponse
	if err := c.do(req, &out); err != nil {
		return Credential{}, fmt.Errorf("catalog login: %w", err)
	}
	if out.Error != "" || out.Token == "" {
		return Credential{}, fmt.Errorf("catalog login rejected: %s", sysutil.FirstNonEmpty(out.Error, "no token"))
	}
	return Credential{Token: out.Token, Secret: out.Secret}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.Wait(ctx)
}

func (c *Client) authorize(req *http.Request, cred Credential) {
	if cred.Token != "" {
		req.Header.Set("X-Auth-Token", cred.Token)
	}
	if cred.Secret != "" {
		req.Header.Set("X-Auth-Secret", cred.Secret)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	httpc := c.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.Logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", req.URL.Path).
			Msg("catalog request failed")
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
