package app

import (
	"context"
	"errors"
	"fmt"

	"tailindex/internal/index"
	"tailindex/internal/watch"
)

// ErrNoMatch is returned by Resolve when no listing entry matches the pattern.
var ErrNoMatch = errors.New("no file matches the pattern")

// Resolve fetches the listing once and returns the URL that Watch would stream.
func (a *App) Resolve(ctx context.Context, target Target) (string, error) {
	if err := a.cfg.Validate(); err != nil {
		return "", err
	}
	fetcher := newFetcher(a.fetcherOptions())

	body, err := fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return "", fmt.Errorf("fetch listing: %w", err)
	}
	entries, err := index.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse listing: %w", err)
	}
	entry, ok := index.Select(entries, target.Pattern, a.cfg.Order)
	if !ok {
		return "", ErrNoMatch
	}
	return watch.FileURL(target.URL, entry.Name), nil
}

func (a *App) fetcherOptions() index.FetcherOptions {
	return index.FetcherOptions{
		User:     a.cfg.User,
		Password: a.cfg.Password,
		Timeout:  a.cfg.FetchTimeout,
		Insecure: a.cfg.Insecure,
	}
}
