package xsdgen

import (
	"fmt"
	"io"
	"strings"

	"github.com/CognitoIQ/xsdclass/xsd"
)

// Dump writes one line per type declared in def, naming the type and
// the type it is derived from.
func Dump(w io.Writer, def *xsd.Definition) error {
	for _, t := range def.Types() {
		if _, err := fmt.Fprintf(w, "Type: %s Base Type: %s\n", xsd.XMLName(t).Local, baseType(t)); err != nil {
			return err
		}
	}
	return nil
}

func baseType(t xsd.Type) string {
	switch t := t.(type) {
	case *xsd.SimpleType:
		switch {
		case t.Restriction != nil:
			return t.Restriction.Base
		case t.List:
			return t.ItemType
		case len(t.Union) > 0:
			return strings.Join(t.Union, " ")
		}
	case *xsd.ComplexType:
		return t.Base
	}
	return ""
}
