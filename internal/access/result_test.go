package access

import (
	"context"
	"testing"
)

func TestResult_States(t *testing.T) {
	tests := []struct {
		name      string
		result    Result
		allowed   bool
		forbidden bool
		neutral   bool
		str       string
	}{
		{"allowed", Allowed(), true, false, false, "allowed"},
		{"neutral", Neutral("no opinion"), false, false, true, "neutral"},
		{"forbidden", Forbidden("nope"), false, true, false, "forbidden"},
		{"zero value", Result{}, false, false, true, "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.IsAllowed(); got != tt.allowed {
				t.Errorf("IsAllowed() = %v, want %v", got, tt.allowed)
			}
			if got := tt.result.IsForbidden(); got != tt.forbidden {
				t.Errorf("IsForbidden() = %v, want %v", got, tt.forbidden)
			}
			if got := tt.result.IsNeutral(); got != tt.neutral {
				t.Errorf("IsNeutral() = %v, want %v", got, tt.neutral)
			}
			if got := tt.result.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestAllowedIf(t *testing.T) {
	if !AllowedIf(true, "x").IsAllowed() {
		t.Error("expected allowed when condition holds")
	}
	r := AllowedIf(false, "role too low")
	if !r.IsNeutral() {
		t.Errorf("expected neutral, got %s", r)
	}
	if r.Reason() != "role too low" {
		t.Errorf("expected reason to be kept, got %q", r.Reason())
	}
}

func TestAccountFrom_DefaultsToAnonymous(t *testing.T) {
	acct := AccountFrom(context.Background())
	if !acct.IsAnonymous() {
		t.Fatal("expected anonymous account on empty context")
	}
	if acct.AccountID() != "" {
		t.Errorf("anonymous account ID = %q, want empty", acct.AccountID())
	}
}

type testAccount struct{ id string }

func (a testAccount) AccountID() string   { return a.id }
func (a testAccount) DisplayName() string { return "Test" }
func (a testAccount) IsSiteAdmin() bool   { return false }
func (a testAccount) IsAnonymous() bool   { return false }

func TestWithAccount_RoundTrip(t *testing.T) {
	ctx := WithAccount(context.Background(), testAccount{id: "u-1"})
	if got := AccountFrom(ctx).AccountID(); got != "u-1" {
		t.Errorf("AccountFrom() ID = %q, want u-1", got)
	}
}
