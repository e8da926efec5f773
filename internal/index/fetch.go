package index

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxListingBytes     = 16 << 20
)

// ErrBadStatus is matched by errors.Is for listing responses outside 2xx.
var ErrBadStatus = errors.New("invalid status code")

// StatusError carries the status of a rejected listing response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid status code %d", e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrBadStatus
}

// FetcherOptions configures the listing client.
type FetcherOptions struct {
	User     string
	Password string
	Timeout  time.Duration
	// Insecure disables TLS certificate verification for listing requests.
	Insecure bool
}

// Fetcher downloads directory listings.
type Fetcher struct {
	client   *http.Client
	user     string
	password string
}

// NewFetcher builds a Fetcher with its own transport.
func NewFetcher(opts FetcherOptions) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		user:     opts.User,
		password: opts.Password,
	}
}

// Fetch GETs rawURL and returns the body. Credentials are sent up front when
// both user and password are configured.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build listing request: %w", err)
	}
	if f.user != "" && f.password != "" {
		req.SetBasicAuth(f.user, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return "", fmt.Errorf("read listing body: %w", err)
	}
	return string(body), nil
}
