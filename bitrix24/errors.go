package bitrix24

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrRateLimited is matched by *RateLimitError through errors.Is.
var ErrRateLimited = errors.New("rate limit exceeded")

// Error codes the API uses when a portal's request or time budget is spent.
const (
	codeQueryLimitExceeded = "QUERY_LIMIT_EXCEEDED"
	codeOperationTimeLimit = "OPERATION_TIME_LIMIT"
)

// ErrorResponse reports an error envelope returned by the API:
//
//	{"error": "NOT_FOUND", "error_description": "Not found"}
type ErrorResponse struct {
	// HTTP response that carried the error.
	Response *http.Response `json:"-"`

	// Code is the machine readable error code, such as "expired_token".
	Code string `json:"error"`

	// Description is the human readable message.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (r *ErrorResponse) Error() string {
	return formatAPIError(r.Response, r.Code, r.Description)
}

// RateLimitError occurs when the portal rejects a call because its request
// bucket or method time budget is exhausted.
type RateLimitError struct {
	Response    *http.Response
	Code        string
	Description string
}

// Error implements the error interface.
func (r *RateLimitError) Error() string {
	return formatAPIError(r.Response, r.Code, r.Description) + " (rate limit)"
}

// Is reports whether target is ErrRateLimited.
func (r *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

func formatAPIError(resp *http.Response, code, description string) string {
	var b strings.Builder
	if resp != nil {
		if resp.Request != nil {
			fmt.Fprintf(&b, "%v %v; ", resp.Request.Method, sanitizeURL(resp.Request.URL))
		}
		fmt.Fprintf(&b, "%d", resp.StatusCode)
	}
	switch {
	case code != "" && description != "":
		fmt.Fprintf(&b, " %s: %s", code, description)
	case code != "":
		fmt.Fprintf(&b, " %s", code)
	case description != "":
		fmt.Fprintf(&b, " %s", description)
	}
	return strings.TrimSpace(b.String())
}

// CheckResponse checks the API response for errors. A response is
// considered an error if its status code is outside the 200 range. The body
// is parsed as an error envelope when possible; otherwise its text becomes
// the description.
func CheckResponse(r *http.Response) error {
	if c := r.StatusCode; 200 <= c && c <= 299 {
		return nil
	}

	errorResponse := &ErrorResponse{Response: r}
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err == nil && len(data) > 0 {
			if jsonErr := json.Unmarshal(data, errorResponse); jsonErr != nil || errorResponse.Code == "" {
				errorResponse.Code = ""
				errorResponse.Description = strings.TrimSpace(string(data))
			}
		}
	}

	if r.StatusCode == http.StatusTooManyRequests || isRateLimitCode(errorResponse.Code) {
		return &RateLimitError{
			Response:    errorResponse.Response,
			Code:        errorResponse.Code,
			Description: errorResponse.Description,
		}
	}

	return errorResponse
}

// envelopeError converts a 2xx envelope that carries an "error" key into an
// API error. The server is not consistent about status codes, so the
// envelope decides.
func envelopeError(resp *Response, envelope Value) error {
	rec, err := envelope.Record()
	if err != nil {
		return nil
	}
	raw, ok := rec.Get("error")
	if !ok || raw.IsNull() {
		return nil
	}

	code, _ := raw.AsString()
	var description string
	if d, ok := rec.Get("error_description"); ok {
		description, _ = d.AsString()
	}

	var httpResp *http.Response
	if resp != nil {
		httpResp = resp.Response
	}

	if isRateLimitCode(code) {
		return &RateLimitError{Response: httpResp, Code: code, Description: description}
	}
	return &ErrorResponse{Response: httpResp, Code: code, Description: description}
}

func isRateLimitCode(code string) bool {
	return code == codeQueryLimitExceeded || code == codeOperationTimeLimit
}

// errorCode returns a low cardinality label for metrics.
func errorCode(err error) string {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return "rate_limit"
	}
	var apiErr *ErrorResponse
	if errors.As(err, &apiErr) {
		if apiErr.Code != "" {
			return strings.ToLower(apiErr.Code)
		}
		if apiErr.Response != nil {
			return fmt.Sprintf("http_%d", apiErr.Response.StatusCode)
		}
	}
	return "unknown"
}

// sanitizeURL redacts credentials from a URL: user info and the OAuth
// "auth" query parameter.
func sanitizeURL(uri *url.URL) *url.URL {
	if uri == nil {
		return nil
	}
	sanitized := *uri
	if sanitized.User != nil {
		sanitized.User = url.UserPassword("REDACTED", "REDACTED")
	}
	params := sanitized.Query()
	if params.Get("auth") != "" {
		params.Set("auth", "REDACTED")
		sanitized.RawQuery = params.Encode()
	}
	return &sanitized
}
