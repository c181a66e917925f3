package dataimport

import "github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"

// Role is the structural role of an imported column
type Role int

const (
	RoleBaseAxis Role = iota
	RoleMeasurement
	RoleAuxiliary
)

func (r Role) String() string {
	switch r {
	case RoleBaseAxis:
		return "BaseAxis"
	case RoleMeasurement:
		return "Measurement"
	case RoleAuxiliary:
		return "Auxiliary"
	default:
		return "Unknown"
	}
}

// Classification is the outcome of Classify
type Classification struct {
	Role          Role
	AuxiliaryKind domain.AuxiliaryKind
	RelatedTo     string
	BaseGridName  string
}

// IsDependent reports whether the column must be attached to a base grid
func (c Classification) IsDependent() bool {
	return c.Role != RoleBaseAxis
}

// Classify decides the role of a column from its descriptor.
func Classify(info domain.ColumnInfo) Classification {
	switch {
	case info.IsBase:
		return Classification{Role: RoleBaseAxis}
	case info.IsAuxiliary:
		return Classification{
			Role:          RoleAuxiliary,
			AuxiliaryKind: info.ErrorDeviation,
			RelatedTo:     info.RelatedColumnOf,
			BaseGridName:  info.BaseGridName,
		}
	default:
		return Classification{
			Role:         RoleMeasurement,
			RelatedTo:    info.RelatedColumnOf,
			BaseGridName: info.BaseGridName,
		}
	}
}

// Origin tags a classified column for downstream filtering
func Origin(c Classification) domain.ColumnOrigin {
	switch {
	case c.Role == RoleBaseAxis:
		return domain.OriginBaseGrid
	case c.Role == RoleAuxiliary && c.AuxiliaryKind.IsDeviation():
		return domain.OriginObservationAuxiliary
	default:
		return domain.OriginObservation
	}
}
