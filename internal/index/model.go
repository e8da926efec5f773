package index

import (
	"fmt"
	"strings"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name string
	Dir  bool
}

// Order decides which end of the name-sorted candidates is current.
type Order int

const (
	Ascending Order = iota
	Descending
)

// ParseOrder accepts "asc" or "desc" (case-insensitive).
func ParseOrder(raw string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("invalid order %q (expected asc or desc)", raw)
	}
}

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}
