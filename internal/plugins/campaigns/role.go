package campaigns

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is a user's permission level within a campaign. Roles are ordered,
// so checks compare with >=:
//
//	if role >= RoleScribe { /* may edit content */ }
//
// Role implements sql.Scanner and driver.Valuer over the campaign_members
// role ENUM.
type Role int

const (
	RoleNone   Role = iota // not a member
	RolePlayer             // reads content that is not private
	RoleScribe             // edits entities, private ones included
	RoleOwner              // full control; one per campaign
)

// roleNames are the stored names, indexed by Role.
var roleNames = [...]string{RoleNone: "", RolePlayer: "player", RoleScribe: "scribe", RoleOwner: "owner"}

// RoleFromString maps a stored role name to its Role. Unknown names map to
// RoleNone.
func RoleFromString(s string) Role {
	for r, name := range roleNames {
		if name != "" && name == s {
			return Role(r)
		}
	}
	return RoleNone
}

// String returns the stored name, "" for RoleNone and unknown values.
func (r Role) String() string {
	if !r.IsValid() {
		return ""
	}
	return roleNames[r]
}

// DisplayName returns the capitalized role name, "None" for non-members.
func (r Role) DisplayName() string {
	if !r.IsValid() {
		return "None"
	}
	name := roleNames[r]
	return strings.ToUpper(name[:1]) + name[1:]
}

// IsValid reports whether r is a membership role.
func (r Role) IsValid() bool { return r >= RolePlayer && r <= RoleOwner }

// Scan implements sql.Scanner.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		*r = RoleFromString(string(v))
	case string:
		*r = RoleFromString(v)
	default:
		return fmt.Errorf("scanning role: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer. RoleNone cannot be stored.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("role %d cannot be stored", int(r))
	}
	return roleNames[r], nil
}
