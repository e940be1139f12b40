package api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	if !ParseTimestamp("").IsZero() {
		t.Fatal("empty value should produce zero time")
	}
	if !ParseTimestamp("yesterday").IsZero() {
		t.Fatal("invalid time should produce zero time")
	}

	want := time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC)
	if got := ParseTimestamp("2024-03-01T10:20:30.123456"); !got.Equal(want) {
		t.Fatalf("naive isoformat: got %v, want %v", got, want)
	}
	if got := ParseTimestamp("2024-03-01T13:20:30.123456+03:00"); !got.Equal(want) {
		t.Fatalf("offset isoformat: got %v, want %v", got, want)
	}
	if got := ParseTimestamp("2024-03-01"); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date only: got %v", got)
	}
}

func TestTimestampJSON(t *testing.T) {
	var doc struct {
		Created Timestamp `json:"created_at"`
		Updated Timestamp `json:"updated_at"`
	}
	if err := json.Unmarshal([]byte(`{"created_at":"2024-03-01T10:20:30","updated_at":null}`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Created.Year() != 2024 || doc.Created.Hour() != 10 {
		t.Fatalf("created: got %v", doc.Created)
	}
	if !doc.Updated.IsZero() {
		t.Fatalf("null should decode to zero time, got %v", doc.Updated)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"created_at":"2024-03-01T10:20:30Z","updated_at":null}` {
		t.Fatalf("marshal: got %s", out)
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct{ total, limit, want int }{
		{0, 20, 0},
		{5, 2, 3},
		{4, 2, 2},
		{1, 100, 1},
		{10, 0, 0},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.limit); got != c.want {
			t.Fatalf("PageCount(%d, %d) = %d, want %d", c.total, c.limit, got, c.want)
		}
	}
}

func TestUploadMetadataFields(t *testing.T) {
	fields := UploadMetadata{Title: "Act", Tags: []string{"q3"}}.Fields()
	if fields["title"] != "Act" {
		t.Fatalf("title: got %v", fields["title"])
	}
	if fields["type"] != nil || fields["department"] != nil {
		t.Fatal("unset fields must be nil")
	}
	if tags, ok := fields["tags"].([]string); !ok || len(tags) != 1 {
		t.Fatalf("tags: got %#v", fields["tags"])
	}
	if (UploadMetadata{}).Fields()["tags"] != nil {
		t.Fatal("empty tags must be nil")
	}
}

func TestUserFullName(t *testing.T) {
	if got := (User{FirstName: "Anna", LastName: "Petrova"}).FullName(); got != "Anna Petrova" {
		t.Fatalf("got %q", got)
	}
	if got := (User{Email: "a@example.com"}).FullName(); got != "a@example.com" {
		t.Fatalf("got %q", got)
	}
}
