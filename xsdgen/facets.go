package xsdgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/CognitoIQ/xsdclass/model"
	"github.com/CognitoIQ/xsdclass/xsd"
)

// A buildContext carries the class a chain of restrictions is
// flattened into.
type buildContext struct {
	class *model.Class
	value *model.Property
}

func newBuildContext(c *model.Class) *buildContext {
	return &buildContext{class: c, value: c.EnsureValue()}
}

// numeric marks the value as an integer, unless an earlier facet
// made it a float.
func (ctx *buildContext) numeric() {
	if ctx.value.Type != model.TypeFloat {
		ctx.value.Type = model.TypeInt
	}
}

func (r *run) enter(name string) error {
	r.depth++
	if r.depth > maxDepth {
		return fmt.Errorf("%s: derivation deeper than %d levels", name, maxDepth)
	}
	return nil
}

func (r *run) leave() { r.depth-- }

// applySimpleType flattens t, and the types it derives from, into
// ctx. Base types are applied first so that facets of derived types
// override them.
func (r *run) applySimpleType(ctx *buildContext, t *xsd.SimpleType) error {
	if err := r.enter(t.Name.Local); err != nil {
		return err
	}
	defer r.leave()

	ns := t.Name.Space
	switch {
	case t.Restriction != nil:
		return r.applyRestriction(ctx, t.Restriction, ns)
	case t.List:
		item, err := r.lookup(t.ItemType, ns)
		if err != nil {
			return err
		}
		typ, err := r.refer(ctx.class, item)
		if err != nil {
			return err
		}
		if typ == "" {
			typ = model.TypeString
		}
		ctx.value.Type = typ + "[]"
	case len(t.Union) > 0:
		ctx.value.Type = model.TypeString
	}
	return nil
}

func (r *run) applyRestriction(ctx *buildContext, res *xsd.Restriction, ns string) error {
	if res.Base != "" {
		base, err := r.lookup(res.Base, ns)
		if err != nil {
			return err
		}
		switch b := base.(type) {
		case xsd.Builtin:
			typ, err := r.valueType(b)
			if err != nil {
				return err
			}
			ctx.value.Type = typ
		case *xsd.SimpleType:
			if err := r.applySimpleType(ctx, b); err != nil {
				return err
			}
		case *xsd.ComplexType:
			if err := r.applyComplexValue(ctx, b); err != nil {
				return err
			}
		}
	}
	for _, st := range res.SimpleTypes {
		if err := r.applySimpleType(ctx, st); err != nil {
			return err
		}
	}
	r.applyFacets(ctx, res.Facets)
	return nil
}

// applyComplexValue flattens the value of a complex type with simple
// content into ctx.
func (r *run) applyComplexValue(ctx *buildContext, t *xsd.ComplexType) error {
	if !t.SimpleContent {
		r.debugf("%s: base %s has no simple content", ctx.class.Name(), t.Name.Local)
		return nil
	}
	if err := r.enter(t.Name.Local); err != nil {
		return err
	}
	defer r.leave()

	if t.Base != "" {
		res := xsd.Restriction{Base: t.Base}
		if t.Restriction != nil {
			res = *t.Restriction
			res.Base = t.Base
		}
		return r.applyRestriction(ctx, &res, t.Name.Space)
	}
	return nil
}

func (r *run) decimal(ctx *buildContext, f xsd.Facet) *apd.Decimal {
	d, _, err := apd.NewFromString(strings.TrimSpace(f.Value))
	if err != nil {
		r.debugf("%s: ignoring %s facet %q: %v", ctx.class.Name(), f.Name, f.Value, err)
		return nil
	}
	return d
}

func (r *run) digits(ctx *buildContext, f xsd.Facet) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(f.Value))
	if err != nil || n < 0 {
		r.debugf("%s: ignoring %s facet %q", ctx.class.Name(), f.Name, f.Value)
		return 0, false
	}
	return n, true
}

// offset returns d+n.
func offset(d *apd.Decimal, n int64) *apd.Decimal {
	var result apd.Decimal
	if _, err := apd.BaseContext.Add(&result, d, apd.New(n, 0)); err != nil {
		return d
	}
	return &result
}

// applyFacets maps the facets of a single restriction onto
// constraints of the class. Enumerations and patterns declared at
// this level replace those inherited from the base type.
func (r *run) applyFacets(ctx *buildContext, facets []xsd.Facet) {
	var (
		c        = ctx.class
		enums    []string
		patterns []string
	)
	for _, f := range facets {
		switch f.Kind {
		case xsd.FacetMinExclusive:
			if d := r.decimal(ctx, f); d != nil {
				c.SetMin(offset(d, 1))
				ctx.numeric()
			}
		case xsd.FacetMinInclusive:
			if d := r.decimal(ctx, f); d != nil {
				c.SetMin(d)
				ctx.numeric()
			}
		case xsd.FacetMaxExclusive:
			if d := r.decimal(ctx, f); d != nil {
				c.SetMax(offset(d, -1))
				ctx.numeric()
			}
		case xsd.FacetMaxInclusive:
			if d := r.decimal(ctx, f); d != nil {
				c.SetMax(d)
				ctx.numeric()
			}
		case xsd.FacetTotalDigits:
			if n, ok := r.digits(ctx, f); ok {
				c.SetTotalDigits(n)
				ctx.numeric()
			}
		case xsd.FacetFractionDigits:
			if n, ok := r.digits(ctx, f); ok {
				c.SetFractionDigits(n)
				ctx.value.Type = model.TypeFloat
			}
		case xsd.FacetLength:
			if n, ok := r.digits(ctx, f); ok {
				c.SetLength(n)
			}
		case xsd.FacetMinLength:
			if n, ok := r.digits(ctx, f); ok {
				c.SetMinLength(n)
			}
		case xsd.FacetMaxLength:
			if n, ok := r.digits(ctx, f); ok {
				c.SetMaxLength(n)
			}
		case xsd.FacetWhiteSpace:
			c.SetWhiteSpace(strings.TrimSpace(f.Value))
		case xsd.FacetEnumeration:
			enums = append(enums, f.Value)
		case xsd.FacetPattern:
			patterns = append(patterns, f.Value)
		default:
			r.debugf("%s: ignoring unknown facet %s", c.Name(), f.Name)
		}
	}
	if len(enums) > 0 {
		c.ClearEnumerations()
		for _, v := range enums {
			c.AddEnumeration(constantName(v), v)
		}
	}
	if len(patterns) > 0 {
		c.SetPatterns(patterns...)
	}
}

// constantName returns the name of the constant declared for an
// enumerated value.
func constantName(v string) string {
	return "VALUE_" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, strings.ToUpper(v))
}

// finishConstants converts enumerated values to the final type of
// the value property.
func (r *run) finishConstants(ctx *buildContext) {
	typ := ctx.value.Type
	for _, name := range ctx.class.Constraints().Enumerations {
		v, ok := ctx.class.Constant(name)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			ctx.class.AddConstant(name, r.literal(s, typ))
		}
	}
}
