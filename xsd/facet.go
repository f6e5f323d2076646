package xsd

// A FacetKind identifies one of the constraining facets that may
// appear inside a <restriction> element.
//
// http://www.w3.org/TR/xmlschema-2/#rf-facets
type FacetKind int

const (
	// FacetUnknown marks a facet this package does not interpret,
	// such as the XSD 1.1 assertion facet.
	FacetUnknown FacetKind = iota
	FacetMinExclusive
	FacetMinInclusive
	FacetMaxExclusive
	FacetMaxInclusive
	FacetTotalDigits
	FacetFractionDigits
	FacetLength
	FacetMinLength
	FacetMaxLength
	FacetEnumeration
	FacetWhiteSpace
	FacetPattern
)

var facetNames = map[FacetKind]string{
	FacetMinExclusive:   "minExclusive",
	FacetMinInclusive:   "minInclusive",
	FacetMaxExclusive:   "maxExclusive",
	FacetMaxInclusive:   "maxInclusive",
	FacetTotalDigits:    "totalDigits",
	FacetFractionDigits: "fractionDigits",
	FacetLength:         "length",
	FacetMinLength:      "minLength",
	FacetMaxLength:      "maxLength",
	FacetEnumeration:    "enumeration",
	FacetWhiteSpace:     "whiteSpace",
	FacetPattern:        "pattern",
}

func (k FacetKind) String() string {
	if s, ok := facetNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseFacetKind returns the FacetKind for the local name of a facet
// element. Unrecognized names yield FacetUnknown.
func ParseFacetKind(local string) FacetKind {
	for k, name := range facetNames {
		if name == local {
			return k
		}
	}
	return FacetUnknown
}

// A Facet is a single constraining facet of a restriction. Name holds
// the element name as it appeared in the document, which is only
// interesting for FacetUnknown.
type Facet struct {
	Kind  FacetKind
	Name  string
	Value string
}
