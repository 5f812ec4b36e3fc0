package slug

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Curse of the Tide":   "curse-of-the-tide",
		"  --Hello!!World-- ": "hello-world",
		"  Minas Tirith! ":    "minas-tirith",
		"Café Noir":           "caf-noir",
		"???":                 "fallback",
	}
	for in, want := range tests {
		if got := Make(in, "fallback"); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{"a", "gandalf-the-grey", "x2"} {
		if !Valid(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "-a", "a-", "a--b", "Upper", "sp ace"} {
		if Valid(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestUnique(t *testing.T) {
	used := map[string]bool{"tide": true, "tide-2": true}
	got, err := Unique(context.Background(), "tide", func(_ context.Context, s string) (bool, error) {
		return used[s], nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tide-3" {
		t.Errorf("got %q, want tide-3", got)
	}
}

func TestUnique_FallsBackToRandomSuffix(t *testing.T) {
	calls := 0
	got, err := Unique(context.Background(), "tide", func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != maxSuffix-1 {
		t.Errorf("expected %d lookups, got %d", maxSuffix-1, calls)
	}
	if !strings.HasPrefix(got, "tide-") || len(got) != len("tide-")+8 {
		t.Errorf("unexpected fallback slug %q", got)
	}
}

func TestUnique_LookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique(context.Background(), "tide", func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped lookup error, got %v", err)
	}
}
