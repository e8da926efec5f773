package index

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"testing"
)

func entries(names ...string) []Entry {
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, Entry{Name: n})
	}
	return out
}

func TestSelect(t *testing.T) {
	logs := entries("b1.log", "a2.log", "a1.log")

	tests := []struct {
		name    string
		entries []Entry
		pattern string
		order   Order
		want    string
		found   bool
	}{
		{name: "ascending picks smallest", entries: logs, pattern: "^a", order: Ascending, want: "a1.log", found: true},
		{name: "descending picks largest", entries: logs, pattern: "^a", order: Descending, want: "a2.log", found: true},
		{name: "unanchored match", entries: logs, pattern: "1", order: Descending, want: "b1.log", found: true},
		{name: "no match", entries: logs, pattern: "^c", order: Ascending},
		{name: "empty listing", entries: nil, pattern: ".", order: Ascending},
		{name: "byte ordering", entries: entries("a10.log", "a9.log"), pattern: "^a", order: Ascending, want: "a10.log", found: true},
		{name: "directories ignored", entries: []Entry{{Name: "a0", Dir: true}, {Name: "a1.log"}}, pattern: "^a", order: Ascending, want: "a1.log", found: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Select(tc.entries, regexp.MustCompile(tc.pattern), tc.order)
			if ok != tc.found {
				t.Fatalf("expected found=%t, got %t (%+v)", tc.found, ok, got)
			}
			if ok && got.Name != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got.Name)
			}
		})
	}
}

func TestSelectDoesNotReorderInput(t *testing.T) {
	in := entries("c.log", "a.log", "b.log")
	Select(in, regexp.MustCompile("log"), Descending)
	if in[0].Name != "c.log" || in[1].Name != "a.log" || in[2].Name != "b.log" {
		t.Fatalf("input was modified: %+v", in)
	}
}

func TestSelectExtremesAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	pattern := regexp.MustCompile("^app-")

	for round := 0; round < 200; round++ {
		var names []string
		seen := map[string]bool{}
		for i := rng.IntN(12); i > 0; i-- {
			prefix := "app-"
			if rng.IntN(3) == 0 {
				prefix = "other-"
			}
			n := fmt.Sprintf("%s%d.log", prefix, rng.IntN(1000))
			if seen[n] {
				continue
			}
			seen[n] = true
			names = append(names, n)
		}

		var lo, hi string
		for _, n := range names {
			if !pattern.MatchString(n) {
				continue
			}
			if lo == "" || n < lo {
				lo = n
			}
			if hi == "" || n > hi {
				hi = n
			}
		}

		asc, okAsc := Select(entries(names...), pattern, Ascending)
		desc, okDesc := Select(entries(names...), pattern, Descending)
		if okAsc != (lo != "") || okDesc != (hi != "") {
			t.Fatalf("round %d: found mismatch for %v", round, names)
		}
		if okAsc && asc.Name != lo {
			t.Fatalf("round %d: asc got %q want %q", round, asc.Name, lo)
		}
		if okDesc && desc.Name != hi {
			t.Fatalf("round %d: desc got %q want %q", round, desc.Name, hi)
		}
	}
}

func TestParseOrder(t *testing.T) {
	for raw, want := range map[string]Order{"": Ascending, "asc": Ascending, " DESC ": Descending} {
		got, err := ParseOrder(raw)
		if err != nil {
			t.Fatalf("ParseOrder(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseOrder(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseOrder("newest"); err == nil || err.Error() != `invalid order "newest" (expected asc or desc)` {
		t.Fatalf("expected order error, got %v", err)
	}
}
