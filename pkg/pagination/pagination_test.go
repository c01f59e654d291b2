package pagination

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{
		-1:  DefaultLimit,
		0:   DefaultLimit,
		25:  25,
		500: 500,
		501: MaxLimit,
	}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if got := LimitWithBuffer(0); got != DefaultLimit+1 {
		t.Fatalf("LimitWithBuffer(0) = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 891, time.FixedZone("x", 3600))
	token := EncodeCursor(Cursor{CreatedAt: created, ID: 42})

	got, err := ParseCursor(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ID != 42 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected cursor %+v", got)
	}

	idOnly, err := ParseCursor(EncodeCursor(Cursor{ID: 7}))
	if err != nil {
		t.Fatalf("parse id-only: %v", err)
	}
	if idOnly.ID != 7 || !idOnly.CreatedAt.IsZero() {
		t.Fatalf("unexpected cursor %+v", idOnly)
	}
}

func TestParseCursorErrors(t *testing.T) {
	if c, err := ParseCursor("  "); c != nil || err != nil {
		t.Fatalf("expected nil cursor for empty input, got %v %v", c, err)
	}

	encode := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	for _, bad := range []string{
		"!!!",
		encode("no-separator"),
		encode("yesterday|5"),
		encode("|0"),
		encode("|abc"),
	} {
		if _, err := ParseCursor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestTrim(t *testing.T) {
	rows := []int{1, 2, 3}

	page, more := Trim(rows, 2)
	if !more || len(page) != 2 {
		t.Fatalf("expected 2 rows and more, got %v %v", page, more)
	}
	page, more = Trim(rows, 3)
	if more || len(page) != 3 {
		t.Fatalf("expected 3 rows and no more, got %v %v", page, more)
	}
}
