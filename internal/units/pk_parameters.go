package units

import (
	"strings"

	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// StandardPKParameter enumerates the PK parameters with a well known dimension
type StandardPKParameter string

const (
	PKUnknown             StandardPKParameter = "Unknown"
	PKCmax                StandardPKParameter = "C_max"
	PKCmin                StandardPKParameter = "C_min"
	PKCTrough             StandardPKParameter = "C_trough"
	PKTmax                StandardPKParameter = "t_max"
	PKTmin                StandardPKParameter = "t_min"
	PKTthreshold          StandardPKParameter = "t_threshold"
	PKAucTend             StandardPKParameter = "AUC_tEnd"
	PKAucInf              StandardPKParameter = "AUC_inf"
	PKAucTendInf          StandardPKParameter = "AUC_tEnd_inf"
	PKMrt                 StandardPKParameter = "MRT"
	PKThalf               StandardPKParameter = "Thalf"
	PKFractionAucEndToInf StandardPKParameter = "FractionAucEndToInf"
	PKVss                 StandardPKParameter = "Vss"
	PKVd                  StandardPKParameter = "Vd"
)

// Dimension names used by DimensionForStandardPKParameter
const (
	DimensionTime                = "Time"
	DimensionMolarConcentration  = "Concentration (molar)"
	DimensionMassConcentration   = "Concentration (mass)"
	DimensionAucMolar            = "AUC (molar)"
	DimensionFraction            = "Fraction"
	DimensionVolumePerBodyWeight = "Volume per body weight"
)

var standardPKParameters = []StandardPKParameter{
	PKCmax, PKCmin, PKCTrough, PKTmax, PKTmin, PKTthreshold,
	PKAucTend, PKAucInf, PKAucTendInf, PKMrt, PKThalf,
	PKFractionAucEndToInf, PKVss, PKVd,
}

func normalizePKName(name string) string {
	return strings.ToLower(strings.NewReplacer("_", "", " ", "").Replace(name))
}

// ParseStandardPKParameter maps a parameter name to its standard kind,
// ignoring case and underscores. Unrecognized names map to PKUnknown.
func ParseStandardPKParameter(name string) StandardPKParameter {
	key := normalizePKName(name)
	for _, p := range standardPKParameters {
		if normalizePKName(string(p)) == key {
			return p
		}
	}
	return PKUnknown
}

// DimensionForStandardPKParameter returns the dimension in which a standard
// PK parameter is expressed. Unknown parameters are dimensionless.
func (r *Registry) DimensionForStandardPKParameter(p StandardPKParameter) *domain.Dimension {
	var name string
	switch p {
	case PKCmax, PKCmin, PKCTrough:
		name = DimensionMolarConcentration
	case PKTmax, PKTmin, PKTthreshold, PKMrt, PKThalf:
		name = DimensionTime
	case PKAucTend, PKAucInf, PKAucTendInf:
		name = DimensionAucMolar
	case PKFractionAucEndToInf:
		name = DimensionFraction
	case PKVss, PKVd:
		name = DimensionVolumePerBodyWeight
	default:
		return domain.NoDimension
	}
	if dim, ok := r.Dimension(name); ok {
		return dim
	}
	return domain.NoDimension
}
