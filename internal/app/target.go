package app

import (
	"fmt"
	"net/url"
	"regexp"
)

// Target is what to watch: a file name pattern inside a listing URL.
type Target struct {
	Pattern *regexp.Regexp
	URL     string
}

// ParseTarget validates the pattern and listing URL given on the command line.
func ParseTarget(pattern, rawURL string) (Target, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Target{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, fmt.Errorf("invalid url %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("invalid url %q: missing host", rawURL)
	}
	return Target{Pattern: re, URL: rawURL}, nil
}
