package enums

import "strings"

// VehicleType is the classification reported by the detection service.
type VehicleType string

const (
	VehicleTypeCar     VehicleType = "car"
	VehicleTypeBike    VehicleType = "bike"
	VehicleTypeUnknown VehicleType = "unknown"
)

var validVehicleTypes = []VehicleType{
	VehicleTypeCar,
	VehicleTypeBike,
	VehicleTypeUnknown,
}

func (v VehicleType) String() string {
	return string(v)
}

func (v VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleType normalizes the remote service's free-form vehicle label.
// Unrecognized labels collapse to VehicleTypeUnknown rather than failing,
// since an odd label is not a protocol violation.
func ParseVehicleType(value string) VehicleType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "car":
		return VehicleTypeCar
	case "bike", "motorcycle", "motorbike":
		return VehicleTypeBike
	default:
		return VehicleTypeUnknown
	}
}
