package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	if !IsValid(a) || !IsValid(b) {
		t.Fatalf("expected valid UUIDs, got %q and %q", a, b)
	}
	if a == b {
		t.Fatal("expected distinct UUIDs")
	}
	if a[14] != '7' {
		t.Errorf("expected version 7, got %q", a)
	}
	if a > b {
		t.Errorf("expected time-ordered UUIDs, got %q after %q", a, b)
	}
}

func TestParse(t *testing.T) {
	t.Run("canonicalizes", func(t *testing.T) {
		in := strings.ToUpper(New())
		out, err := Parse(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != strings.ToLower(in) {
			t.Errorf("expected %q, got %q", strings.ToLower(in), out)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := Parse("not-a-uuid"); err == nil {
			t.Fatal("expected error")
		}
		if IsValid("") {
			t.Error("empty string should not be valid")
		}
	})
}
