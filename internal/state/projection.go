package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rescale/rescale-browse/internal/models"
)

// FilterAll disables type filtering.
const FilterAll = "all"

// SortKey selects the file attribute used for ordering.
type SortKey string

const (
	SortNone      SortKey = ""
	SortByName    SortKey = "name"
	SortByType    SortKey = "type"
	SortByCreated SortKey = "created"
	SortByUpdated SortKey = "updated"
)

// SortKeys lists the selectable keys in display order, starting with none.
var SortKeys = []SortKey{SortNone, SortByName, SortByType, SortByCreated, SortByUpdated}

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

var (
	ErrInvalidSortKey   = errors.New("invalid sort key")
	ErrInvalidDirection = errors.New("invalid sort direction")
)

func (k SortKey) String() string {
	if k == SortNone {
		return "none"
	}
	return string(k)
}

// Valid reports whether k is SortNone or a known key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// ParseSortKey accepts "none", "" or one of the sort key names.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return SortNone, nil
	}
	k := SortKey(s)
	if !k.Valid() {
		return SortNone, fmt.Errorf("%w: %q (want none, name, type, created or updated)", ErrInvalidSortKey, s)
	}
	return k, nil
}

// Valid reports whether d is Ascending or Descending.
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// ParseDirection accepts asc/ascending or desc/descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q (want asc or desc)", ErrInvalidDirection, s)
	}
}

// ProjectionSettings controls how raw files are filtered and ordered for display.
type ProjectionSettings struct {
	FilterType string
	SortKey    SortKey
	Direction  Direction
}

// DefaultProjection shows every file in server order.
func DefaultProjection() ProjectionSettings {
	return ProjectionSettings{
		FilterType: FilterAll,
		SortKey:    SortNone,
		Direction:  Ascending,
	}
}

// Project derives the displayed file list. It never mutates files and
// always returns a new slice.
//
// Filtering keeps entries whose Type equals FilterType exactly, unless the
// filter is "all". Sorting is stable; descending order negates the
// comparator, so entries with equal keys keep their relative order in
// both directions.
func Project(files []models.FileEntry, p ProjectionSettings) []models.FileEntry {
	out := make([]models.FileEntry, 0, len(files))
	for _, f := range files {
		if p.FilterType == FilterAll || p.FilterType == "" || f.Type == p.FilterType {
			out = append(out, f)
		}
	}

	cmp := comparator(p.SortKey)
	if cmp == nil {
		return out
	}
	if p.Direction == Descending {
		asc := cmp
		cmp = func(a, b models.FileEntry) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func comparator(key SortKey) func(a, b models.FileEntry) int {
	switch key {
	case SortByName:
		return func(a, b models.FileEntry) int { return strings.Compare(a.Name, b.Name) }
	case SortByType:
		return func(a, b models.FileEntry) int { return strings.Compare(a.Type, b.Type) }
	case SortByCreated:
		return func(a, b models.FileEntry) int { return a.Created.Compare(b.Created) }
	case SortByUpdated:
		return func(a, b models.FileEntry) int { return a.Updated.Compare(b.Updated) }
	default:
		return nil
	}
}
