package model

// A Property describes one member variable of a class.
type Property struct {
	Name string
	// Name of the XML attribute or child element the property is
	// serialized as. If empty, Name is used.
	XMLName string
	// Semantic type; empty if the property is untyped.
	Type       string
	Visibility Visibility
	Doc        string

	Required bool
	// No setter is generated for immutable properties.
	Immutable bool
	// Fixed properties are assigned Default in the constructor,
	// and are neither constructor parameters nor settable.
	Fixed bool
	// Serialized as an attribute of the enclosing element.
	IsAttribute bool
	// Serialized as repeated child elements.
	IsCollection         bool
	IncludeInConstructor bool
	CreateGetter         bool

	// A string, int64, float64, bool or []interface{}{}; nil if the
	// property has no default. Properties of a class type are
	// constructed from their default.
	Default interface{}
}

// NewProperty returns a protected property that is a constructor
// parameter and has a getter.
func NewProperty(name, typ string) *Property {
	return &Property{
		Name:                 name,
		Type:                 typ,
		Visibility:           Protected,
		IncludeInConstructor: true,
		CreateGetter:         true,
	}
}

// Tag returns the name the property is serialized under.
func (p *Property) Tag() string {
	if p.XMLName != "" {
		return p.XMLName
	}
	return p.Name
}

// Primitive reports whether the property holds a primitive value
// rather than an instance of a generated class.
func (p *Property) Primitive() bool {
	return p.Type == "" || IsPrimitive(p.Type)
}

// HasDefault reports whether the property has a default value.
func (p *Property) HasDefault() bool {
	return p.Default != nil
}

// Wrapped reports whether the property holds a class instance that
// is constructed from a literal default.
func (p *Property) Wrapped() bool {
	return p.Type != "" && !IsPrimitive(p.Type) && p.HasDefault()
}

// Parameter reports whether the property is a constructor parameter.
func (p *Property) Parameter() bool {
	return !p.Fixed && p.IncludeInConstructor
}

// ParamType returns the type of the constructor parameter for p.
// Wrapped properties take the raw default's type.
func (p *Property) ParamType() string {
	if p.Wrapped() {
		return LiteralType(p.Default)
	}
	return p.Type
}

// Nullable reports whether the property's getter may return null.
func (p *Property) Nullable() bool {
	return !p.Required || p.Type == ""
}

// An Argument is a single method parameter.
type Argument struct {
	Name string
	// Semantic type; empty if the argument is untyped.
	Type    string
	Default interface{}
}

// A Method describes one method of a class.
type Method struct {
	Name       string
	Visibility Visibility
	Static     bool
	Arguments  []Argument
	// Semantic return type; empty if the method declares none.
	Returns     string
	ReturnsNull bool
	// Names of the failures the method may raise.
	Throws []string
	Body   []Stmt
	Doc    string
}

// NewMethod returns a public method.
func NewMethod(name string, args ...Argument) *Method {
	return &Method{Name: name, Visibility: Public, Arguments: args}
}

// Throw records that the method may raise the named failure.
func (m *Method) Throw(kind string) *Method {
	for _, k := range m.Throws {
		if k == kind {
			return m
		}
	}
	m.Throws = append(m.Throws, kind)
	return m
}
