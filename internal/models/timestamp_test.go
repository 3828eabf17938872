package models

import (
	"encoding/json"
	"testing"
)

func TestParseTimestamp_Layouts(t *testing.T) {
	cases := []string{
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00.123456+02:00",
		"2024-03-01T10:00:00",
		"2024-03-01 10:00:00",
		"2024-03-01",
	}
	for _, raw := range cases {
		ts := ParseTimestamp(raw)
		if !ts.Valid {
			t.Errorf("ParseTimestamp(%q).Valid = false, want true", raw)
		}
		if ts.Raw != raw {
			t.Errorf("ParseTimestamp(%q).Raw = %q", raw, ts.Raw)
		}
	}
}

func TestParseTimestamp_Unrecognized(t *testing.T) {
	ts := ParseTimestamp("last tuesday")
	if ts.Valid {
		t.Error("expected unrecognized timestamp to be invalid")
	}
	if ts.String() != "last tuesday" {
		t.Errorf("String() = %q, want raw value", ts.String())
	}
}

func TestTimestampCompare(t *testing.T) {
	early := ParseTimestamp("2024-01-01T00:00:00Z")
	late := ParseTimestamp("2024-06-01T00:00:00+00:00")
	junkA := ParseTimestamp("aaa")
	junkB := ParseTimestamp("bbb")

	if early.Compare(late) >= 0 {
		t.Error("expected early < late")
	}
	if late.Compare(early) <= 0 {
		t.Error("expected late > early")
	}
	if early.Compare(ParseTimestamp("2024-01-01 00:00:00")) != 0 {
		t.Error("expected equal instants to compare equal")
	}
	if early.Compare(junkA) >= 0 {
		t.Error("expected parsed timestamps to sort before unparsed ones")
	}
	if junkA.Compare(junkB) >= 0 {
		t.Error("expected unparsed timestamps to fall back to string order")
	}
}

func TestTimestampJSON(t *testing.T) {
	var f Folder
	data := []byte(`{"id":"f1","name":"Docs","created":"2024-01-01T00:00:00Z","updated":"2024-01-02"}`)
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !f.Created.Valid || !f.Updated.Valid {
		t.Errorf("expected both timestamps to parse, got %+v", f)
	}

	out, err := json.Marshal(f.Updated)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-01-02"` {
		t.Errorf("marshal = %s, want raw string", out)
	}

	var bad Timestamp
	if err := json.Unmarshal([]byte(`12345`), &bad); err == nil {
		t.Error("expected error for numeric timestamp")
	}
}

func TestAccessMode(t *testing.T) {
	if Public.FoldersPrefix() != "public-folders" || Private.FoldersPrefix() != "private-folders" {
		t.Error("unexpected folder prefixes")
	}
	if Public.Toggle() != Private || Private.Toggle() != Public {
		t.Error("Toggle should flip the mode")
	}
	if Public.RequiresCredential() || !Private.RequiresCredential() {
		t.Error("only private mode requires a credential")
	}

	for input, want := range map[string]AccessMode{"": Public, "PUBLIC": Public, " private ": Private} {
		got, err := ParseAccessMode(input)
		if err != nil {
			t.Errorf("ParseAccessMode(%q) error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseAccessMode(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseAccessMode("secret"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFindFolder(t *testing.T) {
	folders := []Folder{{ID: "a"}, {ID: "b"}}
	if FindFolder(folders, "b") != 1 {
		t.Error("expected index 1 for b")
	}
	if FindFolder(folders, "z") != -1 {
		t.Error("expected -1 for missing folder")
	}
	if !IsKnownFileType("image") || IsKnownFileType("spreadsheet") {
		t.Error("IsKnownFileType mismatch")
	}
}
