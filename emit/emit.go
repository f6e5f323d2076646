// Package emit renders classes described by the model package as
// source code.
//
// An Emitter writes one class per call. The output is fully buffered:
// nothing is written to the destination unless the whole class was
// rendered successfully.
package emit

import (
	"fmt"
	"io"

	"github.com/CognitoIQ/xsdclass/internal/gen"
	"github.com/CognitoIQ/xsdclass/model"
)

// An Emitter renders a class as source code in a single language.
type Emitter interface {
	// Emit writes the source of c to w.
	Emit(w io.Writer, c *model.Class) error
	// FileName returns the name of the file c should be written to.
	FileName(c *model.Class) string
	// Language names the output language. It is also the key of
	// model.Raw snippets used by the emitter.
	Language() string
}

// For returns the emitter for a target such as "php7.1" or "go".
func For(target, pkg string) (Emitter, error) {
	switch target {
	case "php7.0":
		return PHP{Version: "7.0"}, nil
	case "php", "php7.1":
		return PHP{Version: "7.1"}, nil
	case "go":
		return Go{Package: pkg}, nil
	}
	return nil, fmt.Errorf("unknown target %q", target)
}

// An UnsupportedError is returned when a method body contains a
// statement or expression the emitter cannot render.
type UnsupportedError struct {
	Language string
	Node     interface{}
}

func (err *UnsupportedError) Error() string {
	return fmt.Sprintf("emit: %T is not supported in %s output", err.Node, err.Language)
}

// walkStmts calls fn for each statement in stmts, depth first.
func walkStmts(stmts []model.Stmt, fn func(model.Stmt)) {
	for _, s := range stmts {
		fn(s)
		switch s := s.(type) {
		case model.If:
			walkStmts(s.Then, fn)
		case model.ForEach:
			walkStmts(s.Body, fn)
		case model.Block:
			walkStmts(s, fn)
		}
	}
}

// raises reports whether stmts contain a validation guard.
func raises(stmts []model.Stmt) bool {
	found := false
	walkStmts(stmts, func(s model.Stmt) {
		if _, ok := s.(model.Guard); ok {
			found = true
		}
	})
	return found
}

// Quote returns s as a string literal of the given language.
func Quote(language, s string) string {
	if language == "php" {
		return phpString(s)
	}
	return gen.Quote(s)
}

// QuotePattern returns a literal holding an anchored regular
// expression equivalent to the XML Schema pattern.
func QuotePattern(language, pattern string) string {
	if language == "php" {
		return phpRegexp(pattern)
	}
	return gen.Quote("^(?:" + pattern + ")$")
}
