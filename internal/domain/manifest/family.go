package manifest

import (
	"fmt"
	"strings"
)

// Family identifies one regulated waste-transport manifest family.
// Each family has its own closed set of event types and its own
// normalization rules.
type Family string

const (
	// FamilyBSDD is the generic dangerous-waste manifest.
	FamilyBSDD Family = "BSDD"
	// FamilyBSDA is the asbestos waste manifest.
	FamilyBSDA Family = "BSDA"
	// FamilyBSDASRI is the infectious medical waste manifest.
	FamilyBSDASRI Family = "BSDASRI"
	// FamilyBSFF is the fluorinated refrigerant gas manifest.
	FamilyBSFF Family = "BSFF"
	// FamilyBSVHU is the end-of-life vehicle manifest.
	FamilyBSVHU Family = "BSVHU"
)

// Families lists every supported family.
var Families = []Family{FamilyBSDD, FamilyBSDA, FamilyBSDASRI, FamilyBSFF, FamilyBSVHU}

// ParseFamily converts a wire value (case-insensitive) to a Family.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Families {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown manifest family %q", s)
}

// ForFamily returns the descriptor for a family.
func ForFamily(f Family) (*Descriptor, error) {
	switch f {
	case FamilyBSDD:
		return BSDD, nil
	case FamilyBSDA:
		return BSDA, nil
	case FamilyBSDASRI:
		return BSDASRI, nil
	case FamilyBSFF:
		return BSFF, nil
	case FamilyBSVHU:
		return BSVHU, nil
	default:
		return nil, fmt.Errorf("unknown manifest family %q", f)
	}
}
