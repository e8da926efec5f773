package watch

import (
	"net/url"
	"strings"

	"tailindex/internal/index"
)

// Action is the kind of change a refresh produced.
type Action int

const (
	Unchanged Action = iota
	ChangedTo
	ClearedToNone
)

func (a Action) String() string {
	switch a {
	case ChangedTo:
		return "changed"
	case ClearedToNone:
		return "cleared"
	default:
		return "unchanged"
	}
}

// Decision tells the Supervisor what to do after a refresh.
type Decision struct {
	Action   Action
	URL      string
	Previous string
}

// Target is the URL currently being watched. Empty means nothing.
type Target struct {
	url string
}

// URL returns the watched URL.
func (t *Target) URL() string {
	return t.url
}

// Tracker turns selected candidates into Decisions and is the only writer
// of its Target.
type Tracker struct {
	target *Target
}

// NewTracker binds a Tracker to target.
func NewTracker(target *Target) *Tracker {
	return &Tracker{target: target}
}

// Update compares the URL of candidate (nil for no candidate) with the
// current target and records it when it differs.
func (tr *Tracker) Update(candidate *index.Entry, baseURL string) Decision {
	next := ""
	if candidate != nil {
		next = FileURL(baseURL, candidate.Name)
	}
	prev := tr.target.url
	if next == prev {
		return Decision{Action: Unchanged, URL: prev, Previous: prev}
	}

	tr.target.url = next
	if next == "" {
		return Decision{Action: ClearedToNone, Previous: prev}
	}
	return Decision{Action: ChangedTo, URL: next, Previous: prev}
}

// Clear empties the target unconditionally. It always reports
// ClearedToNone so that a stale worker is stopped.
func (tr *Tracker) Clear() Decision {
	prev := tr.target.url
	tr.target.url = ""
	return Decision{Action: ClearedToNone, Previous: prev}
}

// FileURL joins a listing URL and an entry name.
func FileURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + escapeComponent(name)
}

// keepMarks restores the sub-delims that browsers' encodeURIComponent
// leaves as is.
var keepMarks = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// escapeComponent percent-encodes everything outside the RFC 3986
// unreserved set and !'()*.
func escapeComponent(s string) string {
	return keepMarks.Replace(url.QueryEscape(s))
}
