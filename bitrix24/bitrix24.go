package bitrix24

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	Version = "0.1.0"

	userAgent       = "go-bitrix24/" + Version
	mediaTypeJSON   = "application/json"
	headerRequestID = "X-Request-Id"

	// Portals refill their request bucket at two requests per second and
	// hold up to fifty.
	defaultRequestsPerSecond = 2
	defaultBurst             = 50
)

// NewClient returns a new Bitrix24 REST API client for the portal at
// address.
//
// For an incoming webhook, address is the full webhook URL (for example
// https://example.bitrix24.com/rest/1/abc123/) and accessToken is empty. For
// an OAuth application, address is https://example.bitrix24.com/rest/ and
// accessToken is the current access token.
//
// If httpClient is nil, a new http.Client is used.
func NewClient(httpClient *http.Client, address string, accessToken string) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	parsed, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid address: %q must be an absolute URL", address)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	c := &Client{
		client:      httpClient,
		Address:     parsed,
		UserAgent:   userAgent,
		AccessToken: accessToken,
		Logger:      zerolog.Nop(),
		Limiter:     rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
	}
	c.initialize()
	return c, nil
}

func (c *Client) initialize() {
	c.common.client = c
	c.Users = (*UsersService)(&c.common)
	c.Contacts = (*ContactsService)(&c.common)
	c.Placements = (*PlacementsService)(&c.common)
	c.UserFieldTypes = (*UserFieldTypesService)(&c.common)
	c.Telephony = (*TelephonyService)(&c.common)
}

// authOptions carries the OAuth access token as a query parameter.
type authOptions struct {
	Auth string `url:"auth,omitempty"`
}

// NewRequest creates an API request for a REST method. urlStr is resolved
// relative to the client's Address and must not start with a slash. If body
// is not nil it is JSON encoded as the request body.
func (c *Client) NewRequest(method, urlStr string, body any) (*http.Request, error) {
	if !strings.HasSuffix(c.Address.Path, "/") {
		return nil, fmt.Errorf("Address must have a trailing slash, but %q does not", c.Address)
	}

	if c.AccessToken != "" {
		var err error
		urlStr, err = addOptions(urlStr, &authOptions{Auth: c.AccessToken})
		if err != nil {
			return nil, err
		}
	}

	u, err := c.Address.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	var buf io.ReadWriter
	if body != nil {
		buf = &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, u.String(), buf)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", mediaTypeJSON)
	}
	req.Header.Set("Accept", mediaTypeJSON)
	req.Header.Set(headerRequestID, uuid.NewString())
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return req, nil
}

// Do sends an API request and returns the API response. The response body is
// JSON decoded into v when v is not nil. Non-2xx responses are returned as
// *ErrorResponse or *RateLimitError.
//
// Do waits on the client's Limiter before sending, so a portal's request
// budget is spent evenly.
func (c *Client) Do(ctx context.Context, req *http.Request, v any) (*Response, error) {
	if ctx == nil {
		return nil, errors.New("context must be non-nil")
	}

	apiMethod := path.Base(req.URL.Path)
	logger := c.Logger.With().
		Str("method", apiMethod).
		Str("request_id", req.Header.Get(headerRequestID)).
		Logger()

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	c.clientMu.Lock()
	httpClient := c.client
	c.clientMu.Unlock()

	start := time.Now()
	resp, err := httpClient.Do(req.WithContext(ctx))
	elapsed := time.Since(start)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			if u, perr := url.Parse(urlErr.URL); perr == nil {
				urlErr.URL = sanitizeURL(u).String()
			}
			err = urlErr
		}
		c.Metrics.observeCall(apiMethod, "transport", elapsed)
		logger.Debug().Err(err).Dur("duration", elapsed).Msg("bitrix24 call failed")
		return nil, err
	}
	defer resp.Body.Close()

	response := newResponse(resp)

	if err := CheckResponse(resp); err != nil {
		c.Metrics.observeCall(apiMethod, errorCode(err), elapsed)
		logger.Warn().Err(err).Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("bitrix24 call returned error")
		return response, err
	}

	c.Metrics.observeCall(apiMethod, "", elapsed)
	logger.Debug().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("bitrix24 call")

	if v != nil {
		decErr := json.NewDecoder(resp.Body).Decode(v)
		if decErr == io.EOF {
			decErr = nil
		}
		if decErr != nil {
			return response, fmt.Errorf("decode response body: %w", decErr)
		}
	}

	return response, nil
}

// Call invokes a REST method and returns the wrapped success envelope.
// params is JSON encoded as the request body; opts adds paging to the URL.
// An envelope carrying an "error" key is returned as *ErrorResponse even
// when the HTTP status is 2xx.
func (c *Client) Call(ctx context.Context, method string, params any, opts *ListOptions) (*CoreResponse, *Response, error) {
	u, err := addOptions(method, opts)
	if err != nil {
		return nil, nil, err
	}

	req, err := c.NewRequest(http.MethodPost, u, params)
	if err != nil {
		return nil, nil, err
	}

	var envelope Value
	resp, err := c.Do(ctx, req, &envelope)
	if err != nil {
		return nil, resp, err
	}

	if apiErr := envelopeError(resp, envelope); apiErr != nil {
		c.Metrics.observeFailure(method, errorCode(apiErr))
		c.Logger.Warn().Err(apiErr).Str("method", method).Msg("bitrix24 call returned error envelope")
		return nil, resp, apiErr
	}

	core, err := NewCoreResponse(envelope, resp)
	if err != nil {
		return nil, resp, err
	}

	data := core.ResponseData()
	if next, ok := data.Next(); ok {
		resp.Next = next
	}
	if total, ok := data.Total(); ok {
		resp.Total = total
	}
	resp.Time = data.Time()

	return core, resp, nil
}

// newResponse creates a new Response for the provided http.Response.
func newResponse(r *http.Response) *Response {
	return &Response{Response: r}
}

// addOptions adds the parameters in opts as URL query parameters to s. opts
// must be a struct whose fields may contain "url" tags.
func addOptions(s string, opts any) (string, error) {
	v := reflect.ValueOf(opts)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	qs, err := query.Values(opts)
	if err != nil {
		return s, err
	}

	merged := u.Query()
	for key, values := range qs {
		for _, value := range values {
			merged.Add(key, value)
		}
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}
