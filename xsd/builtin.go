package xsd

import (
	"encoding/xml"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// A Builtin is one of the primitive or derived types defined by
// "XML Schema Part 2: Datatypes".
//
// http://www.w3.org/TR/xmlschema-2/#built-in-datatypes
type Builtin int

func (Builtin) isType() {}

const (
	AnyType Builtin = iota
	AnySimpleType
	ENTITIES
	ENTITY
	ID
	IDREF
	IDREFS
	NCName
	NMTOKEN
	NMTOKENS
	NOTATION
	Name
	QName
	AnyURI
	Base64Binary
	Boolean
	Byte
	Date
	DateTime
	Decimal
	Double
	Duration
	Float
	GDay
	GMonth
	GMonthDay // ISO 8601 format: --MM-DD
	GYear
	GYearMonth
	HexBinary
	Int
	Integer
	Language
	Long
	NegativeInteger
	NonNegativeInteger
	NonPositiveInteger
	NormalizedString
	PositiveInteger
	Short
	String
	Time
	Token
	UnsignedByte
	UnsignedInt
	UnsignedLong
	UnsignedShort
)

var builtinNames = [...]string{
	AnyType:            "AnyType",
	AnySimpleType:      "AnySimpleType",
	ENTITIES:           "ENTITIES",
	ENTITY:             "ENTITY",
	ID:                 "ID",
	IDREF:              "IDREF",
	IDREFS:             "IDREFS",
	NCName:             "NCName",
	NMTOKEN:            "NMTOKEN",
	NMTOKENS:           "NMTOKENS",
	NOTATION:           "NOTATION",
	Name:               "Name",
	QName:              "QName",
	AnyURI:             "AnyURI",
	Base64Binary:       "Base64Binary",
	Boolean:            "Boolean",
	Byte:               "Byte",
	Date:               "Date",
	DateTime:           "DateTime",
	Decimal:            "Decimal",
	Double:             "Double",
	Duration:           "Duration",
	Float:              "Float",
	GDay:               "GDay",
	GMonth:             "GMonth",
	GMonthDay:          "GMonthDay",
	GYear:              "GYear",
	GYearMonth:         "GYearMonth",
	HexBinary:          "HexBinary",
	Int:                "Int",
	Integer:            "Integer",
	Language:           "Language",
	Long:               "Long",
	NegativeInteger:    "NegativeInteger",
	NonNegativeInteger: "NonNegativeInteger",
	NonPositiveInteger: "NonPositiveInteger",
	NormalizedString:   "NormalizedString",
	PositiveInteger:    "PositiveInteger",
	Short:              "Short",
	String:             "String",
	Time:               "Time",
	Token:              "Token",
	UnsignedByte:       "UnsignedByte",
	UnsignedInt:        "UnsignedInt",
	UnsignedLong:       "UnsignedLong",
	UnsignedShort:      "UnsignedShort",
}

func (b Builtin) String() string {
	if b < 0 || int(b) >= len(builtinNames) {
		return fmt.Sprintf("Builtin(%d)", int(b))
	}
	return builtinNames[b]
}

// Name returns the canonical name of the built-in type, in the XML
// Schema namespace.
func (b Builtin) Name() xml.Name {
	name := b.String()
	switch b {
	case ENTITIES, ENTITY, ID, IDREF, IDREFS, NCName, NMTOKEN, NMTOKENS, NOTATION, QName, Name:
	default:
		r, sz := utf8.DecodeRuneInString(name)
		name = string(unicode.ToLower(r)) + name[sz:]
	}
	return xml.Name{Space: Namespace, Local: name}
}

// ParseBuiltin looks up a Builtin by its local name in the XML Schema
// namespace, such as "unsignedByte". A non-nil error is returned if
// local does not name a built-in type.
func ParseBuiltin(local string) (Builtin, error) {
	for i := range builtinNames {
		if b := Builtin(i); b.Name().Local == local {
			return b, nil
		}
	}
	return -1, fmt.Errorf("xsd:%s is not a built-in", local)
}
