// Package model describes generated classes independently of the
// language they are emitted in.
//
// A Class collects identity, members and the validation constraints of
// a schema type. Method bodies and validation logic are expressed with
// a small statement tree (see Stmt and Expr) so that a single Class can
// be rendered by several emitters.
package model

import (
	"fmt"
	"strings"
)

// A Kind is the kind of type declared by a Class.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
)

// A Modifier alters how a class may be used or extended.
type Modifier string

const (
	Final    Modifier = "final"
	Abstract Modifier = "abstract"
)

// Visibility of a property or method.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// A ConfigError is returned when a Class is configured with a value
// outside of a closed set, or is incomplete when it is rendered.
type ConfigError struct {
	Class string
	Msg   string
}

func (err *ConfigError) Error() string {
	if err.Class == "" {
		return "model: " + err.Msg
	}
	return fmt.Sprintf("model: class %s: %s", err.Class, err.Msg)
}

// Primitive semantic types. Any other non-empty type name refers to a
// class. A type ending in "[]" is a list of the named type.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeArray  = "array"
)

// IsPrimitive reports whether typ is one of the primitive semantic
// types, or a list.
func IsPrimitive(typ string) bool {
	switch typ {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeArray:
		return true
	}
	return IsList(typ)
}

// IsList reports whether typ is a list type, such as "Book[]".
func IsList(typ string) bool {
	return strings.HasSuffix(typ, "[]")
}

// ElemType returns the item type of a list type, and typ itself
// for anything else.
func ElemType(typ string) string {
	return strings.TrimSuffix(typ, "[]")
}

// LiteralType returns the primitive semantic type of a literal value,
// as stored in Property.Default or Lit.Value.
func LiteralType(v interface{}) string {
	switch v.(type) {
	case string:
		return TypeString
	case int, int64:
		return TypeInt
	case float64:
		return TypeFloat
	case bool:
		return TypeBool
	case []interface{}:
		return TypeArray
	}
	return ""
}
