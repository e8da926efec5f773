package watch

import (
	"testing"

	"tailindex/internal/index"
)

func TestTrackerUpdate(t *testing.T) {
	var target Target
	tr := NewTracker(&target)
	base := "https://logs.example/app"

	d := tr.Update(&index.Entry{Name: "a1.log"}, base)
	if d.Action != ChangedTo || d.URL != base+"/a1.log" || d.Previous != "" {
		t.Fatalf("unexpected first decision %+v", d)
	}
	if target.URL() != base+"/a1.log" {
		t.Fatalf("target not updated: %q", target.URL())
	}

	d = tr.Update(&index.Entry{Name: "a1.log"}, base)
	if d.Action != Unchanged || d.URL != base+"/a1.log" {
		t.Fatalf("expected Unchanged on repeat, got %+v", d)
	}

	d = tr.Update(&index.Entry{Name: "a2.log"}, base)
	if d.Action != ChangedTo || d.Previous != base+"/a1.log" || d.URL != base+"/a2.log" {
		t.Fatalf("unexpected change decision %+v", d)
	}

	d = tr.Update(nil, base)
	if d.Action != ClearedToNone || d.URL != "" || d.Previous != base+"/a2.log" {
		t.Fatalf("expected ClearedToNone, got %+v", d)
	}
	if target.URL() != "" {
		t.Fatalf("target should be empty, got %q", target.URL())
	}

	if d := tr.Update(nil, base); d.Action != Unchanged {
		t.Fatalf("expected Unchanged for empty -> empty, got %+v", d)
	}
}

func TestTrackerClearAlwaysReportsCleared(t *testing.T) {
	var target Target
	tr := NewTracker(&target)

	if d := tr.Clear(); d.Action != ClearedToNone || d.Previous != "" {
		t.Fatalf("unexpected decision on empty target %+v", d)
	}
	tr.Update(&index.Entry{Name: "x.log"}, "http://h")
	if d := tr.Clear(); d.Action != ClearedToNone || d.Previous != "http://h/x.log" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if target.URL() != "" {
		t.Fatalf("target should be empty, got %q", target.URL())
	}
}

func TestFileURL(t *testing.T) {
	tests := map[string]struct {
		base, name, want string
	}{
		"plain":          {"http://h/logs", "a1.log", "http://h/logs/a1.log"},
		"trailing slash": {"http://h/logs/", "a1.log", "http://h/logs/a1.log"},
		"space":          {"http://h/logs", "app 1.log", "http://h/logs/app%201.log"},
		"reserved":       {"http://h/logs", "a#b?c&d+e.log", "http://h/logs/a%23b%3Fc%26d%2Be.log"},
		"unreserved":     {"http://h/logs", "A-z_0.9~x", "http://h/logs/A-z_0.9~x"},
		"utf8":           {"http://h/logs", "журнал.log", "http://h/logs/%D0%B6%D1%83%D1%80%D0%BD%D0%B0%D0%BB.log"},
		"marks kept":     {"http://h/logs/", "a(1)!'x'*.log", "http://h/logs/a(1)!'x'*.log"},
		"plus escaped":   {"http://h/logs", "a+b.log", "http://h/logs/a%2Bb.log"},
		"percent":        {"http://h/logs", "100%.log", "http://h/logs/100%25.log"},
		// one slash between base and name, unlike naive concatenation
		"double slash avoided": {"http://h/logs//", "a1.log", "http://h/logs/a1.log"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := FileURL(tc.base, tc.name); got != tc.want {
				t.Fatalf("FileURL(%q, %q) = %q, want %q", tc.base, tc.name, got, tc.want)
			}
		})
	}
}
