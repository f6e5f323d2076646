package xsd

import (
	"fmt"
	"strings"

	"github.com/CognitoIQ/xsdclass/xmltree"
)

// Parsing a schema involves deeply nested calls over the element
// tree. Errors are raised with stop and bubble up through walk, which
// records the path to the offending element. The panics never leave
// this package.
type parseError struct {
	message string
	path    []*xmltree.Element
}

func (err parseError) Error() string {
	breadcrumbs := make([]string, 0, len(err.path))
	for i := len(err.path) - 1; i >= 0; i-- {
		piece := err.path[i].Name.Local
		if name := err.path[i].Attr("", "name"); name != "" {
			piece = fmt.Sprintf("%s(%s)", piece, name)
		}
		breadcrumbs = append(breadcrumbs, piece)
	}
	return "xsd: error at " + strings.Join(breadcrumbs, ">") + ": " + err.message
}

func stop(msg string) {
	panic(parseError{message: msg})
}

func stopf(format string, v ...interface{}) {
	stop(fmt.Sprintf(format, v...))
}

// walk calls fn for each child of root in the XML Schema namespace.
func walk(root *xmltree.Element, fn func(*xmltree.Element)) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(parseError); ok {
				err.path = append(err.path, root)
				panic(err)
			}
			panic(r)
		}
	}()
	for i := 0; i < len(root.Children); i++ {
		if root.Children[i].Name.Space != Namespace {
			continue
		}
		fn(&root.Children[i])
	}
}

// defer catchParseError(&err)
func catchParseError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(parseError)
		if !ok {
			panic(r)
		}
		*err = perr
	}
}
