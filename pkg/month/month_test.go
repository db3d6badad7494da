package month

import (
	"errors"
	"testing"
	"time"
)

func TestParseValid(t *testing.T) {
	m, err := Parse("2024-05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Year != 2024 || m.Mon != time.May {
		t.Fatalf("expected 2024-05, got %v", m)
	}
	if m.String() != "2024-05" {
		t.Fatalf("expected canonical form, got %q", m.String())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "2024", "2024-13", "2024-00", "24-05", "2024/05", "2024-5"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", input, err)
		}
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	m, err := Parse("  2024-02 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.String() != "2024-02" {
		t.Fatalf("got %q", m.String())
	}
}

func TestBounds(t *testing.T) {
	m, _ := Parse("2024-12")
	start, end := m.Bounds()
	if !start.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bad start: %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bad end: %v", end)
	}
}

func TestOf(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	at := time.Date(2024, 6, 1, 2, 0, 0, 0, loc)
	// 2024-06-01 02:00 +07 is still 2024-05 in UTC.
	if got := Of(at).String(); got != "2024-05" {
		t.Fatalf("expected 2024-05, got %q", got)
	}
}
