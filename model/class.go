package model

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ValueProperty is the name of the property holding the scalar value
// of a simple type.
const ValueProperty = "value"

// ValidationFailure is the failure kind raised by generated
// validation code.
const ValidationFailure = "ValidationException"

// A Constant is a named literal declared by a class.
type Constant struct {
	Name  string
	Value interface{}
}

// Constraints restrict the value property of a class. Nil pointers
// are unset.
type Constraints struct {
	Min, Max       *apd.Decimal
	TotalDigits    *int
	FractionDigits *int
	Length         *int
	MinLength      *int
	MaxLength      *int
	// Names of the constants holding the allowed values.
	Enumerations []string
	WhiteSpace   string
	// Patterns are alternatives; the value must match one of them.
	Patterns []string
	// Extra statements appended to the constructor after the
	// generated guards.
	Validators []Stmt
}

func (c *Constraints) empty() bool {
	return c.Min == nil && c.Max == nil && c.TotalDigits == nil &&
		c.FractionDigits == nil && c.Length == nil && c.MinLength == nil &&
		c.MaxLength == nil && c.Enumerations == nil && len(c.Patterns) == 0 &&
		len(c.Validators) == 0
}

// A Class describes a single generated type. Classes are built up by
// the generator, rendered once by an emitter and then discarded.
type Class struct {
	namespace    string
	name         string
	kind         Kind
	modifiers    []Modifier
	parent       string
	implements   []string
	docBlock     string
	comment      string
	declarations []string
	uses         []string

	properties []*Property
	methods    []*Method
	constants  []Constant

	simpleType  bool
	constraints Constraints
}

// New returns an empty concrete class.
func New(name string) *Class {
	return &Class{name: name, kind: KindClass}
}

func (c *Class) Namespace() string      { return c.namespace }
func (c *Class) Name() string           { return c.name }
func (c *Class) Kind() Kind             { return c.kind }
func (c *Class) Modifiers() []Modifier  { return c.modifiers }
func (c *Class) Parent() string         { return c.parent }
func (c *Class) Implements() []string   { return c.implements }
func (c *Class) DocBlock() string       { return c.docBlock }
func (c *Class) Comment() string        { return c.comment }
func (c *Class) Declarations() []string { return c.declarations }
func (c *Class) Uses() []string         { return c.uses }
func (c *Class) Properties() []*Property {
	return c.properties
}
func (c *Class) Methods() []*Method        { return c.methods }
func (c *Class) Constants() []Constant     { return c.constants }
func (c *Class) SimpleType() bool          { return c.simpleType }
func (c *Class) Constraints() *Constraints { return &c.constraints }

func (c *Class) SetNamespace(ns string) *Class  { c.namespace = ns; return c }
func (c *Class) SetName(name string) *Class     { c.name = name; return c }
func (c *Class) SetParent(name string) *Class   { c.parent = name; return c }
func (c *Class) SetDocBlock(doc string) *Class  { c.docBlock = doc; return c }
func (c *Class) SetComment(doc string) *Class   { c.comment = doc; return c }
func (c *Class) SetSimpleType(ok bool) *Class   { c.simpleType = ok; return c }
func (c *Class) AddDeclaration(d string) *Class { c.declarations = append(c.declarations, d); return c }

// SetKind changes the kind of type declared.
func (c *Class) SetKind(k Kind) error {
	switch k {
	case KindClass, KindInterface, KindTrait:
		c.kind = k
		return nil
	}
	return &ConfigError{Class: c.name, Msg: fmt.Sprintf("class type must be class, interface or trait, not %q", k)}
}

// AddModifier adds a class modifier. Only Final and Abstract are
// accepted.
func (c *Class) AddModifier(m Modifier) error {
	if m != Final && m != Abstract {
		return &ConfigError{Class: c.name, Msg: fmt.Sprintf("modifier can only be final or abstract, not %q", m)}
	}
	for _, v := range c.modifiers {
		if v == m {
			return nil
		}
	}
	c.modifiers = append(c.modifiers, m)
	return nil
}

// Implement adds name to the capabilities the class implements.
func (c *Class) Implement(name string) *Class {
	for _, v := range c.implements {
		if v == name {
			return c
		}
	}
	c.implements = append(c.implements, name)
	return c
}

// Use adds an import. Duplicates are ignored.
func (c *Class) Use(name string) *Class {
	for _, v := range c.uses {
		if v == name {
			return c
		}
	}
	c.uses = append(c.uses, name)
	return c
}

// AddProperty appends p to the class. A property with the same name
// is replaced in place.
func (c *Class) AddProperty(p *Property) *Class {
	for i, v := range c.properties {
		if v.Name == p.Name {
			c.properties[i] = p
			return c
		}
	}
	c.properties = append(c.properties, p)
	return c
}

// Property returns the property with the given name, or nil.
func (c *Class) Property(name string) *Property {
	for _, p := range c.properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddMethod appends m to the class. A method with the same name is
// replaced in place.
func (c *Class) AddMethod(m *Method) *Class {
	for i, v := range c.methods {
		if v.Name == m.Name {
			c.methods[i] = m
			return c
		}
	}
	c.methods = append(c.methods, m)
	return c
}

// Method returns the method with the given name, or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// AddConstant declares a constant. Redeclaring a constant replaces
// its value without changing its position.
func (c *Class) AddConstant(name string, value interface{}) *Class {
	for i, v := range c.constants {
		if v.Name == name {
			c.constants[i].Value = value
			return c
		}
	}
	c.constants = append(c.constants, Constant{Name: name, Value: value})
	return c
}

// Constant returns the value of the named constant.
func (c *Class) Constant(name string) (interface{}, bool) {
	for _, v := range c.constants {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

func (c *Class) removeConstant(name string) {
	for i, v := range c.constants {
		if v.Name == name {
			c.constants = append(c.constants[:i], c.constants[i+1:]...)
			return
		}
	}
}

// SortedProperties returns the properties in rendering order:
// properties without a default value first, then those with one.
// Relative order within each group is kept.
func (c *Class) SortedProperties() []*Property {
	sorted := make([]*Property, 0, len(c.properties))
	for _, p := range c.properties {
		if !p.HasDefault() {
			sorted = append(sorted, p)
		}
	}
	for _, p := range c.properties {
		if p.HasDefault() {
			sorted = append(sorted, p)
		}
	}
	return sorted
}

// EnsureValue returns the value property, adding a required,
// immutable string property if the class has none.
func (c *Class) EnsureValue() *Property {
	if p := c.Property(ValueProperty); p != nil {
		return p
	}
	p := NewProperty(ValueProperty, TypeString)
	p.Required = true
	p.Immutable = true
	c.AddProperty(p)
	return p
}

func (c *Class) constrain() {
	c.simpleType = true
	c.EnsureValue()
}

func intp(n int) *int { return &n }

func (c *Class) SetMin(d *apd.Decimal)     { c.constrain(); c.constraints.Min = d }
func (c *Class) SetMax(d *apd.Decimal)     { c.constrain(); c.constraints.Max = d }
func (c *Class) SetTotalDigits(n int)      { c.constrain(); c.constraints.TotalDigits = intp(n) }
func (c *Class) SetFractionDigits(n int)   { c.constrain(); c.constraints.FractionDigits = intp(n) }
func (c *Class) SetLength(n int)           { c.constrain(); c.constraints.Length = intp(n) }
func (c *Class) SetMinLength(n int)        { c.constrain(); c.constraints.MinLength = intp(n) }
func (c *Class) SetMaxLength(n int)        { c.constrain(); c.constraints.MaxLength = intp(n) }
func (c *Class) SetWhiteSpace(mode string) { c.constrain(); c.constraints.WhiteSpace = mode }

// SetPatterns replaces the patterns the value must match.
func (c *Class) SetPatterns(patterns ...string) {
	c.constrain()
	c.constraints.Patterns = patterns
}

// AddEnumeration allows value, declaring it as the constant name.
func (c *Class) AddEnumeration(name string, value interface{}) {
	c.constrain()
	c.AddConstant(name, value)
	for _, v := range c.constraints.Enumerations {
		if v == name {
			return
		}
	}
	c.constraints.Enumerations = append(c.constraints.Enumerations, name)
}

// ClearEnumerations removes all allowed values and their constants.
func (c *Class) ClearEnumerations() {
	for _, name := range c.constraints.Enumerations {
		c.removeConstant(name)
	}
	c.constraints.Enumerations = nil
}

// AddValidator appends statements to the constructor's validation.
func (c *Class) AddValidator(stmts ...Stmt) {
	c.constrain()
	c.constraints.Validators = append(c.constraints.Validators, stmts...)
}

// HasConstraints reports whether the constructor validates its
// arguments.
func (c *Class) HasConstraints() bool {
	return c.simpleType && !c.constraints.empty()
}

// Merge copies the properties, methods and imports of other into c.
// If other is a simple type, its constants and constraints are
// copied as well.
func (c *Class) Merge(other *Class) *Class {
	for _, p := range other.properties {
		c.AddProperty(p)
	}
	if other.simpleType {
		c.simpleType = true
		c.constraints = other.constraints
		c.constraints.Patterns = append([]string(nil), other.constraints.Patterns...)
		c.constraints.Enumerations = append([]string(nil), other.constraints.Enumerations...)
		c.constraints.Validators = append([]Stmt(nil), other.constraints.Validators...)
		for _, k := range other.constants {
			c.AddConstant(k.Name, k.Value)
		}
	}
	for _, m := range other.methods {
		c.AddMethod(m)
	}
	for _, u := range other.uses {
		c.Use(u)
	}
	return c
}

// Validate checks that the class is complete enough to render.
func (c *Class) Validate() error {
	if strings.TrimSpace(c.name) == "" {
		return &ConfigError{Msg: "class name is empty"}
	}
	return nil
}

// ConstraintGuards returns the statements validating the value
// property, in a fixed order: bounds, digits, lengths, patterns,
// enumerations and then any extra validators.
func (c *Class) ConstraintGuards() []Stmt {
	if !c.simpleType {
		return nil
	}
	var (
		k     = &c.constraints
		value = Prop{Name: ValueProperty}
		out   []Stmt
	)
	if k.Min != nil {
		out = append(out, Guard{
			Cond:    Binary{Op: Lt, X: value, Y: Lit{k.Min}},
			Message: "value out of bounds",
		})
	}
	if k.Max != nil {
		out = append(out, Guard{
			Cond:    Binary{Op: Gt, X: value, Y: Lit{k.Max}},
			Message: "value out of bounds",
		})
	}
	if n := k.TotalDigits; n != nil {
		out = append(out, Guard{
			Cond:    Binary{Op: Lt, X: Lit{int64(*n)}, Y: DigitCount{value}},
			Message: fmt.Sprintf("value must contain at most %d digits", *n),
		})
	}
	if n := k.FractionDigits; n != nil {
		decimals := Var{Name: "decimals"}
		out = append(out, Block{
			Assign{To: decimals, Value: FractionDigitCount{value}},
			Guard{
				Cond:    Binary{Op: Ne, X: Lit{int64(*n)}, Y: decimals},
				Message: fmt.Sprintf("value can only contain %d decimal digits", *n),
			},
		})
	}
	if n := k.Length; n != nil {
		out = append(out, Guard{
			Cond:    Binary{Op: Ne, X: Lit{int64(*n)}, Y: Length{value}},
			Message: fmt.Sprintf("value must be %d characters", *n),
		})
	}
	if n := k.MinLength; n != nil {
		out = append(out, Guard{
			Cond:    Binary{Op: Gt, X: Lit{int64(*n)}, Y: Length{value}},
			Message: fmt.Sprintf("value must be at least %d characters", *n),
		})
	}
	if n := k.MaxLength; n != nil {
		out = append(out, Guard{
			Cond:    Binary{Op: Lt, X: Lit{int64(*n)}, Y: Length{value}},
			Message: fmt.Sprintf("value must be at most %d characters", *n),
		})
	}
	if len(k.Patterns) > 0 {
		pattern := strings.Join(k.Patterns, "|")
		if len(k.Patterns) > 1 {
			pattern = "(?:" + strings.Join(k.Patterns, ")|(?:") + ")"
		}
		out = append(out, Guard{
			Cond:    Not{Matches{X: value, Pattern: pattern}},
			Message: `value does not match pattern "` + pattern + `"`,
		})
	}
	if len(k.Enumerations) > 0 {
		var (
			candidates = make([]Expr, 0, len(k.Enumerations))
			names      = make([]string, 0, len(k.Enumerations))
		)
		for _, name := range k.Enumerations {
			candidates = append(candidates, Const{Name: name})
			v, _ := c.Constant(name)
			names = append(names, fmt.Sprint(v))
		}
		out = append(out, Guard{
			Cond:    Not{OneOf{X: value, Values: candidates}},
			Message: "value must be one of " + strings.Join(names, ", "),
		})
	}
	return append(out, k.Validators...)
}
