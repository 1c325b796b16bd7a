package devops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/adoscope/internal/domain/entities"
	"github.com/rios0rios0/adoscope/internal/domain/repositories"
)

const (
	apiVersion             = "7.0"
	alertsAPIVersion       = "7.2-preview.1"
	entitlementsAPIVersion = "6.0-preview.3"

	requestTimeout = 30 * time.Second
	retryCount     = 2
	retryDelay     = time.Second

	continuationHeader = "x-ms-continuationtoken"

	errorBodyLimit = 200
)

// Client issues authenticated requests against the Azure DevOps REST surface.
// Every call yields an entities.Result: transport errors and HTTP statuses
// >= 400 become failed Results, never Go errors or panics, so callers can
// treat any failure as absent data.
type Client struct {
	baseURL   string // https://dev.azure.com/{org}
	vsaexURL  string // user entitlement host
	advsecURL string // security alert host
	scheme    string // "basic" or "bearer"
	creds     repositories.CredentialSource
	http      *retryablehttp.Client
}

// NewClient creates a client for the given organization. The organization
// may be a bare name or a full https://dev.azure.com/{org} URL.
func NewClient(organization, scheme string, creds repositories.CredentialSource) *Client {
	org := strings.TrimSuffix(organization, "/")
	org = strings.TrimPrefix(org, "https://dev.azure.com/")

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryCount
	rc.RetryWaitMin = retryDelay
	rc.RetryWaitMax = retryDelay
	rc.HTTPClient.Timeout = requestTimeout
	rc.Logger = retryLogger{}

	return &Client{
		baseURL:   "https://dev.azure.com/" + org,
		vsaexURL:  "https://vsaex.dev.azure.com/" + org,
		advsecURL: "https://advsec.dev.azure.com/" + org,
		scheme:    scheme,
		creds:     creds,
		http:      rc,
	}
}

// WithBaseURLs overrides the three API hosts; used by tests.
func (c *Client) WithBaseURLs(base, vsaex, advsec string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	c.vsaexURL = strings.TrimSuffix(vsaex, "/")
	c.advsecURL = strings.TrimSuffix(advsec, "/")
	return c
}

// OrgURL builds a fully-qualified endpoint on the main API host.
func (c *Client) OrgURL(path string) string {
	return c.baseURL + path
}

// VsaexURL builds an endpoint on the user entitlement host.
func (c *Client) VsaexURL(path string) string {
	return c.vsaexURL + path
}

// AdvsecURL builds an endpoint on the security alert host.
func (c *Client) AdvsecURL(path string) string {
	return c.advsecURL + path
}

// Get issues a GET against a fully-qualified endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) entities.Result {
	res, _ := c.do(ctx, http.MethodGet, endpoint, nil)
	return res
}

// GetWithContinuation issues a GET and also returns the continuation token
// header that paged listings use.
func (c *Client) GetWithContinuation(ctx context.Context, endpoint string) (entities.Result, string) {
	res, headers := c.do(ctx, http.MethodGet, endpoint, nil)
	if headers == nil {
		return res, ""
	}
	return res, headers.Get(continuationHeader)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) entities.Result {
	res, _ := c.do(ctx, http.MethodPost, endpoint, body)
	return res
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (entities.Result, http.Header) {
	var rawBody any
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return entities.FailureResult(fmt.Errorf("failed to marshal request body: %w", err)), nil
		}
		rawBody = jsonBody
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, rawBody)
	if err != nil {
		return entities.FailureResult(fmt.Errorf("failed to create request: %w", err)), nil
	}

	// The credential is resolved per request so rotated tokens take effect
	// mid-run.
	token, err := c.creds.Token(ctx)
	if err != nil {
		return entities.FailureResult(fmt.Errorf("failed to resolve credential: %w", err)), nil
	}

	if c.scheme == "bearer" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		auth := base64.StdEncoding.EncodeToString([]byte(":" + token))
		req.Header.Set("Authorization", "Basic "+auth)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return entities.FailureResult(fmt.Errorf("request failed: %w", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.FailureResult(fmt.Errorf("failed to read response: %w", err)), resp.Header
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return entities.FailureResult(
			fmt.Errorf("API error (status %d): %s", resp.StatusCode, snippet(respBody)),
		), resp.Header
	}

	return entities.SuccessResult(respBody), resp.Header
}

// escapeSegment percent-encodes a URL path segment, including characters
// PathEscape leaves alone but the service rejects unescaped, like "$".
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "$", "%24")
}

// snippet trims response bodies for error messages.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorBodyLimit {
		return s[:errorBodyLimit] + "..."
	}
	return s
}

// retryLogger routes the retrying transport's log lines into logrus so retry
// noise stays behind the debug level.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...any) {
	logger.Errorf("http: %s %v", msg, keysAndValues)
}

func (retryLogger) Warn(msg string, keysAndValues ...any) {
	logger.Warnf("http: %s %v", msg, keysAndValues)
}

func (retryLogger) Info(msg string, keysAndValues ...any) {
	logger.Debugf("http: %s %v", msg, keysAndValues)
}

func (retryLogger) Debug(msg string, keysAndValues ...any) {
	logger.Debugf("http: %s %v", msg, keysAndValues)
}
