package enums

import "fmt"

// OfficerRole controls which API surfaces an officer may reach.
type OfficerRole string

const (
	OfficerRolePolice OfficerRole = "police"
	OfficerRoleAdmin  OfficerRole = "admin"
)

var validOfficerRoles = []OfficerRole{
	OfficerRolePolice,
	OfficerRoleAdmin,
}

func (r OfficerRole) String() string {
	return string(r)
}

func (r OfficerRole) IsValid() bool {
	for _, candidate := range validOfficerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOfficerRole converts raw input into an OfficerRole.
func ParseOfficerRole(value string) (OfficerRole, error) {
	for _, candidate := range validOfficerRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid officer role %q", value)
}
