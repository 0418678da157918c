package enums

import "fmt"

// ViolationKind is the closed set of offences the service records.
type ViolationKind string

const (
	ViolationKindHelmet   ViolationKind = "Helmet"
	ViolationKindSeatbelt ViolationKind = "Seatbelt"
	ViolationKindOther    ViolationKind = "Other"
)

var validViolationKinds = []ViolationKind{
	ViolationKindHelmet,
	ViolationKindSeatbelt,
	ViolationKindOther,
}

func (v ViolationKind) String() string {
	return string(v)
}

func (v ViolationKind) IsValid() bool {
	for _, candidate := range validViolationKinds {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseViolationKind converts raw input into a ViolationKind.
func ParseViolationKind(value string) (ViolationKind, error) {
	for _, candidate := range validViolationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid violation kind %q", value)
}
