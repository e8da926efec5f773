package watch

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"tailindex/internal/index"
)

const (
	defaultRefresh          = 300 * time.Second
	defaultMinManualRefresh = 5 * time.Second
	stopTimeout             = 10 * time.Second
)

// Fetcher downloads the listing body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Applier executes decisions on the worker slot.
type Applier interface {
	Apply(Decision)
	Stop(ctx context.Context) error
}

// Report describes the outcome of one refresh.
type Report struct {
	At        time.Time
	Candidate *index.Entry
	Decision  Decision
	Err       error
}

// SchedulerOptions configures the refresh loop.
type SchedulerOptions struct {
	URL     string
	Pattern *regexp.Regexp
	Order   index.Order
	Refresh time.Duration
	// MinManualRefresh is the minimum spacing between Refresh requests.
	MinManualRefresh time.Duration
	Logger           *slog.Logger
	// OnReport is called after every refresh. It must not block.
	OnReport func(Report)
}

// Scheduler periodically selects the file to watch and drives the Supervisor.
// It owns the watch Target; Run must be called from a single goroutine.
type Scheduler struct {
	opts    SchedulerOptions
	fetcher Fetcher
	sup     Applier
	log     *slog.Logger

	target  Target
	tracker *Tracker

	limiter *rate.Limiter
	manual  chan struct{}
}

// NewScheduler wires a Scheduler. Pattern must be non-nil.
func NewScheduler(fetcher Fetcher, sup Applier, opts SchedulerOptions) *Scheduler {
	if opts.Refresh <= 0 {
		opts.Refresh = defaultRefresh
	}
	if opts.MinManualRefresh <= 0 {
		opts.MinManualRefresh = defaultMinManualRefresh
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Scheduler{
		opts:    opts,
		fetcher: fetcher,
		sup:     sup,
		log:     logger,
		limiter: rate.NewLimiter(rate.Every(opts.MinManualRefresh), 1),
		manual:  make(chan struct{}, 1),
	}
	s.tracker = NewTracker(&s.target)
	return s
}

// Run refreshes immediately and then every Refresh interval until ctx is
// done, after which the worker is stopped.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Refresh)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			s.log.Info("shutting down, stopping worker")
			return s.sup.Stop(stopCtx)
		case <-ticker.C:
			s.Tick(ctx)
		case <-s.manual:
			s.Tick(ctx)
			ticker.Reset(s.opts.Refresh)
		}
	}
}

// Refresh asks Run for an immediate refresh. It returns false when the
// request was throttled.
func (s *Scheduler) Refresh() bool {
	if !s.limiter.Allow() {
		s.log.Debug("manual refresh throttled")
		return false
	}
	select {
	case s.manual <- struct{}{}:
	default:
	}
	return true
}

// Target returns the URL being watched.
func (s *Scheduler) Target() string {
	return s.target.URL()
}

// Tick performs one refresh cycle.
func (s *Scheduler) Tick(ctx context.Context) Report {
	rep := Report{At: time.Now()}

	body, err := s.fetcher.Fetch(ctx, s.opts.URL)
	var entries []index.Entry
	if err == nil {
		entries, err = index.Parse(body)
	}
	if err != nil {
		rep.Err = err
		if ctx.Err() != nil {
			return rep
		}
		s.log.Error("can't reach listing, stopping worker until it is back", "url", s.opts.URL, "err", err)
		rep.Decision = s.tracker.Clear()
		s.sup.Apply(rep.Decision)
		s.report(rep)
		return rep
	}

	if entry, ok := index.Select(entries, s.opts.Pattern, s.opts.Order); ok {
		rep.Candidate = &entry
	} else {
		s.log.Warn("no file found, waiting for something to watch", "pattern", s.opts.Pattern.String(), "entries", len(entries))
	}

	rep.Decision = s.tracker.Update(rep.Candidate, s.opts.URL)
	if rep.Decision.Action != Unchanged {
		s.log.Info("file to watch changed", "from", rep.Decision.Previous, "to", rep.Decision.URL)
	}
	s.sup.Apply(rep.Decision)
	s.report(rep)
	return rep
}

func (s *Scheduler) report(rep Report) {
	if s.opts.OnReport != nil {
		s.opts.OnReport(rep)
	}
}
