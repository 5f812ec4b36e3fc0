package campaigns

import "testing"

func TestRole_RoundTrip(t *testing.T) {
	for _, r := range []Role{RolePlayer, RoleScribe, RoleOwner} {
		if got := RoleFromString(r.String()); got != r {
			t.Errorf("round trip of %v gave %v", r, got)
		}
		if !r.IsValid() {
			t.Errorf("expected %v to be valid", r)
		}
	}
	if RoleFromString("bogus") != RoleNone || RoleFromString("") != RoleNone || RoleNone.IsValid() {
		t.Error("unknown roles must map to an invalid RoleNone")
	}
}

func TestRole_DisplayName(t *testing.T) {
	tests := map[Role]string{RoleOwner: "Owner", RoleScribe: "Scribe", RolePlayer: "Player", RoleNone: "None", Role(9): "None"}
	for r, want := range tests {
		if got := r.DisplayName(); got != want {
			t.Errorf("Role(%d).DisplayName() = %q, want %q", int(r), got, want)
		}
	}
}

func TestRole_SQL(t *testing.T) {
	var r Role
	if err := r.Scan([]byte("scribe")); err != nil || r != RoleScribe {
		t.Errorf("Scan([]byte) = %v, %v", r, err)
	}
	if err := r.Scan("owner"); err != nil || r != RoleOwner {
		t.Errorf("Scan(string) = %v, %v", r, err)
	}
	if err := r.Scan(3); err == nil {
		t.Error("expected error for integer source")
	}

	v, err := RolePlayer.Value()
	if err != nil || v != "player" {
		t.Errorf("Value() = %v, %v", v, err)
	}
	if _, err := RoleNone.Value(); err == nil {
		t.Error("expected RoleNone to be rejected")
	}
}
