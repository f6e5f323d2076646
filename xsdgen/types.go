package xsdgen

import (
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	"github.com/CognitoIQ/xsdclass/model"
	"github.com/CognitoIQ/xsdclass/xmltree"
	"github.com/CognitoIQ/xsdclass/xsd"
)

// simpleClass builds the value class for a simple type. The class
// holds a single value property, validated against the facets of t
// and every type t derives from.
func (r *run) simpleClass(t *xsd.SimpleType) (*model.Class, error) {
	c := r.newClass(nsSimpleType, r.className(t.Name.Local)).SetComment(t.Doc)
	ctx := newBuildContext(c)
	if err := r.applySimpleType(ctx, t); err != nil {
		return nil, err
	}
	r.finishConstants(ctx)
	r.writeXML(c)
	r.finish(c)
	return c, nil
}

// complexClass builds the class for a complex type. Properties of
// the type it extends are copied ahead of its own.
func (r *run) complexClass(t *xsd.ComplexType) (*model.Class, error) {
	if err := r.enter(t.Name.Local); err != nil {
		return nil, err
	}
	defer r.leave()

	ns := t.Name.Space
	c := r.newClass(nsComplexType, r.className(t.Name.Local)).SetComment(t.Doc)
	if t.Abstract {
		if err := c.AddModifier(model.Abstract); err != nil {
			return nil, err
		}
	}
	if t.Mixed {
		r.debugf("%s: ignoring character data of mixed content", c.Name())
	}

	if t.Base != "" {
		base, err := r.lookup(t.Base, ns)
		if err != nil {
			return nil, err
		}
		if b, ok := base.(*xsd.ComplexType); ok && t.Extends {
			parent, err := r.complexClass(b)
			if err != nil {
				return nil, err
			}
			c.SetParent(parent.Name())
			use(c, r.qualified(nsComplexType, parent.Name()))
			c.Merge(parent)
		} else if t.SimpleContent {
			ctx := newBuildContext(c)
			res := xsd.Restriction{Base: t.Base}
			if t.Restriction != nil {
				res = *t.Restriction
				res.Base = t.Base
			}
			if err := r.applyRestriction(ctx, &res, ns); err != nil {
				return nil, err
			}
			r.finishConstants(ctx)
		}
	}
	if t.SimpleContent {
		c.EnsureValue()
	}

	for _, el := range t.Elements {
		p, err := r.elementProperty(c, el, ns)
		if err != nil {
			return nil, err
		}
		c.AddProperty(p)
	}
	for _, a := range t.Attributes {
		p, err := r.attributeProperty(c, a, ns)
		if err != nil {
			return nil, err
		}
		c.AddProperty(p)
	}
	r.writeXML(c)
	r.finish(c)
	return c, nil
}

// resolveElement returns the declaration el stands for, and the
// namespace its type is written in. References to top-level elements
// take their type and constraints from the referenced declaration.
func (r *run) resolveElement(el xsd.Element, ns string) (xsd.Element, string, error) {
	if el.Ref == "" {
		return el, ns, nil
	}
	prefix, local := xmltree.SplitQName(el.Ref)
	space := ns
	if prefix != "" {
		var ok bool
		if space, ok = r.def.NamespaceFromAlias(prefix); !ok {
			return el, ns, &TypeNotFoundError{Ref: el.Ref}
		}
	}
	target := r.def.FindElement(local, space)
	if target == nil {
		return el, ns, &TypeNotFoundError{Ref: el.Ref}
	}
	el.Type = target.Type
	if el.Doc == "" {
		el.Doc = target.Doc
	}
	if el.Default == "" {
		el.Default = target.Default
	}
	if el.Fixed == "" {
		el.Fixed = target.Fixed
	}
	el.Nillable = el.Nillable || target.Nillable
	return el, target.Name.Space, nil
}

func (r *run) elementProperty(c *model.Class, el xsd.Element, ns string) (*model.Property, error) {
	el, typeNS, err := r.resolveElement(el, ns)
	if err != nil {
		return nil, err
	}
	var t xsd.Type = xsd.AnyType
	if el.Type != "" {
		if t, err = r.lookup(el.Type, typeNS); err != nil {
			return nil, err
		}
	}
	typ, fqn, err := r.typeOf(t)
	if err != nil {
		return nil, err
	}
	name := strcase.ToLowerCamel(el.Name.Local)

	if el.Plural() {
		coll, err := r.collection(typ, fqn, el.MinOccurs, el.MaxOccurs)
		if err != nil {
			return nil, err
		}
		use(c, r.qualified(nsValueObject, coll))
		p := model.NewProperty(inflection.Plural(name), coll)
		p.XMLName = el.Name.Local
		p.IsCollection = true
		p.Required = el.MinOccurs > 0
		p.Doc = el.Doc
		return p, nil
	}

	use(c, fqn)
	p := model.NewProperty(name, typ)
	p.XMLName = el.Name.Local
	p.Required = el.MinOccurs > 0 && !el.Nillable
	p.Doc = el.Doc
	if err := r.setDefault(p, t, el.Default, el.Fixed); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *run) attributeProperty(c *model.Class, a xsd.Attribute, ns string) (*model.Property, error) {
	var (
		typeNS  = ns
		xmlName = a.Name.Local
	)
	if a.Ref != "" {
		if a.Name.Space == xsd.XMLNamespace {
			xmlName = "xml:" + a.Name.Local
			a.Type = ""
		} else {
			target := r.def.FindAttribute(a.Name.Local, a.Name.Space)
			if target == nil {
				return nil, &TypeNotFoundError{Ref: a.Ref}
			}
			a.Type = target.Type
			typeNS = target.Name.Space
			if typeNS == "" {
				typeNS = a.Name.Space
			}
			if a.Doc == "" {
				a.Doc = target.Doc
			}
			if a.Default == "" {
				a.Default = target.Default
			}
			if a.Fixed == "" {
				a.Fixed = target.Fixed
			}
		}
	}
	var (
		t   xsd.Type = xsd.AnySimpleType
		err error
	)
	if a.Type != "" {
		if t, err = r.lookup(a.Type, typeNS); err != nil {
			return nil, err
		}
	}
	typ, err := r.refer(c, t)
	if err != nil {
		return nil, err
	}
	p := model.NewProperty(strcase.ToLowerCamel(a.Name.Local), typ)
	p.XMLName = xmlName
	p.IsAttribute = true
	p.Required = a.Required
	p.Doc = a.Doc
	if err := r.setDefault(p, t, a.Default, a.Fixed); err != nil {
		return nil, err
	}
	return p, nil
}
