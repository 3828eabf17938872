package state

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rescale/rescale-browse/internal/models"
)

func file(name, typ, created string) models.FileEntry {
	return models.FileEntry{
		Name:    name,
		Type:    typ,
		Created: models.ParseTimestamp(created),
		Updated: models.ParseTimestamp(created),
	}
}

func names(files []models.FileEntry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

var sample = []models.FileEntry{
	file("c.mp4", "video", "2024-03-01T00:00:00Z"),
	file("a.txt", "document", "2024-01-01T00:00:00Z"),
	file("b.png", "image", "2024-02-01T00:00:00Z"),
	file("d.pdf", "document", "2024-04-01T00:00:00Z"),
}

func TestProject_DefaultIsIdentity(t *testing.T) {
	got := Project(sample, ProjectionSettings{FilterType: FilterAll, SortKey: SortNone, Direction: Ascending})
	if !reflect.DeepEqual(got, sample) {
		t.Errorf("Project() = %v, want input unchanged", names(got))
	}

	// Direction alone never reorders
	got = Project(sample, ProjectionSettings{FilterType: FilterAll, SortKey: SortNone, Direction: Descending})
	if !reflect.DeepEqual(got, sample) {
		t.Errorf("Project() with no key = %v, want input order", names(got))
	}
}

func TestProject_ReturnsNewSlice(t *testing.T) {
	input := append([]models.FileEntry(nil), sample...)
	got := Project(input, ProjectionSettings{FilterType: FilterAll, SortKey: SortByName, Direction: Descending})
	if !reflect.DeepEqual(input, sample) {
		t.Error("Project() mutated its input")
	}
	got[0].Name = "changed"
	for _, f := range input {
		if f.Name == "changed" {
			t.Error("Project() result aliases its input")
		}
	}

	empty := Project(nil, DefaultProjection())
	if empty == nil || len(empty) != 0 {
		t.Errorf("Project(nil) = %v, want empty non-nil slice", empty)
	}
}

func TestProject_Filter(t *testing.T) {
	p := ProjectionSettings{FilterType: "document", SortKey: SortNone, Direction: Ascending}
	once := Project(sample, p)
	if want := []string{"a.txt", "d.pdf"}; !reflect.DeepEqual(names(once), want) {
		t.Errorf("filter = %v, want %v", names(once), want)
	}

	twice := Project(once, p)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent: %v vs %v", names(once), names(twice))
	}

	none := Project(sample, ProjectionSettings{FilterType: "spreadsheet", Direction: Ascending})
	if len(none) != 0 {
		t.Errorf("unknown type filter = %v, want empty", names(none))
	}

	// Exact match only
	caseSensitive := Project(sample, ProjectionSettings{FilterType: "Document", Direction: Ascending})
	if len(caseSensitive) != 0 {
		t.Errorf("filter should be exact, got %v", names(caseSensitive))
	}
}

func TestProject_SortKeys(t *testing.T) {
	tests := []struct {
		key  SortKey
		dir  Direction
		want []string
	}{
		{SortByName, Ascending, []string{"a.txt", "b.png", "c.mp4", "d.pdf"}},
		{SortByName, Descending, []string{"d.pdf", "c.mp4", "b.png", "a.txt"}},
		{SortByCreated, Ascending, []string{"a.txt", "b.png", "c.mp4", "d.pdf"}},
		{SortByUpdated, Descending, []string{"d.pdf", "c.mp4", "b.png", "a.txt"}},
		{SortByType, Ascending, []string{"a.txt", "d.pdf", "b.png", "c.mp4"}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String()+"/"+string(tt.dir), func(t *testing.T) {
			got := Project(sample, ProjectionSettings{FilterType: FilterAll, SortKey: tt.key, Direction: tt.dir})
			if !reflect.DeepEqual(names(got), tt.want) {
				t.Errorf("got %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestProject_TimestampsSortChronologically(t *testing.T) {
	// 13:00+02:00 is 11:00 UTC, earlier than 12:00 UTC
	files := []models.FileEntry{
		file("late", "document", "2024-01-01T12:00:00+00:00"),
		file("early", "document", "2024-01-01T13:00:00+02:00"),
	}
	got := Project(files, ProjectionSettings{FilterType: FilterAll, SortKey: SortByCreated, Direction: Ascending})
	if want := []string{"early", "late"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestProject_DistinctKeysReverseExactly(t *testing.T) {
	asc := Project(sample, ProjectionSettings{FilterType: FilterAll, SortKey: SortByName, Direction: Ascending})
	desc := Project(sample, ProjectionSettings{FilterType: FilterAll, SortKey: SortByName, Direction: Descending})
	for i := range asc {
		if asc[i].Name != desc[len(desc)-1-i].Name {
			t.Fatalf("descending is not the reverse of ascending: %v vs %v", names(asc), names(desc))
		}
	}
}

func TestProject_StabilityWithDuplicateKeys(t *testing.T) {
	files := []models.FileEntry{
		file("doc-1", "document", "2024-01-01"),
		file("img-1", "image", "2024-01-01"),
		file("doc-2", "document", "2024-01-01"),
		file("img-2", "image", "2024-01-01"),
		file("doc-3", "document", "2024-01-01"),
	}

	asc := Project(files, ProjectionSettings{FilterType: FilterAll, SortKey: SortByType, Direction: Ascending})
	if want := []string{"doc-1", "doc-2", "doc-3", "img-1", "img-2"}; !reflect.DeepEqual(names(asc), want) {
		t.Errorf("ascending = %v, want %v", names(asc), want)
	}

	// Groups invert, order within each group is preserved
	desc := Project(files, ProjectionSettings{FilterType: FilterAll, SortKey: SortByType, Direction: Descending})
	if want := []string{"img-1", "img-2", "doc-1", "doc-2", "doc-3"}; !reflect.DeepEqual(names(desc), want) {
		t.Errorf("descending = %v, want %v", names(desc), want)
	}

	// All keys equal: both directions keep server order
	byCreated := Project(files, ProjectionSettings{FilterType: FilterAll, SortKey: SortByCreated, Direction: Descending})
	if !reflect.DeepEqual(byCreated, files) {
		t.Errorf("equal keys reordered: %v", names(byCreated))
	}
}

func TestParseSortKey(t *testing.T) {
	for input, want := range map[string]SortKey{
		"":        SortNone,
		"none":    SortNone,
		"NAME":    SortByName,
		"type":    SortByType,
		"created": SortByCreated,
		"updated": SortByUpdated,
	} {
		got, err := ParseSortKey(input)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = (%q, %v), want %q", input, got, err, want)
		}
	}
	if _, err := ParseSortKey("size"); !errors.Is(err, ErrInvalidSortKey) {
		t.Errorf("ParseSortKey(size) error = %v, want ErrInvalidSortKey", err)
	}
}

func TestParseDirection(t *testing.T) {
	for input, want := range map[string]Direction{
		"asc": Ascending, "Ascending": Ascending, "desc": Descending, "DESCENDING": Descending,
	} {
		got, err := ParseDirection(input)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = (%q, %v), want %q", input, got, err, want)
		}
	}
	if _, err := ParseDirection("up"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("ParseDirection(up) error = %v, want ErrInvalidDirection", err)
	}
	if Ascending.Flip() != Descending || Descending.Flip() != Ascending {
		t.Error("Flip() should swap directions")
	}
}
