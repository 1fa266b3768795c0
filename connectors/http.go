// Package connectors holds the HTTP plumbing shared by the external data
// sources. The sources themselves live in subpackages.
package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/poiesic/talentscout/backoff"
	"github.com/poiesic/talentscout/core"
)

// UserAgent is sent with every request.
const UserAgent = "talentscout/1.0"

// Retry settings for source requests.
var (
	Attempts  = 3
	BaseDelay = 500 * time.Millisecond
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %s", e.URL, e.Status)
}

// Retryable reports whether a request failure is worth repeating: transport
// errors, rate limiting and server errors are; other statuses and decode
// errors are not.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) && !errors.Is(err, context.Canceled)
}

// NewClient returns client, or a client with a default timeout when nil.
func NewClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: timeout}
}

// GetJSON fetches url and decodes the JSON body into out. Failures are
// retried with exponential backoff and finally wrapped in
// core.ErrCollaboratorUnavailable.
func GetJSON(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	err := backoff.RetryIf(ctx, func() error {
		return getJSONOnce(ctx, client, url, header, out)
	}, Attempts, BaseDelay, Retryable)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func getJSONOnce(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Host, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
