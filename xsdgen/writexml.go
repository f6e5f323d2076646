package xsdgen

import (
	"github.com/jinzhu/inflection"

	"github.com/CognitoIQ/xsdclass/model"
)

var (
	streamVar = model.Var{Name: "stream"}
	tagVar    = model.Var{Name: "tagName"}
)

func (r *run) writeXMLMethod() *model.Method {
	m := model.NewMethod("writeXML",
		model.Argument{Name: "stream", Type: streamName},
		model.Argument{Name: "tagName", Type: model.TypeString})
	m.Doc = "Writes the object as an XML element named tagName."
	return m
}

func write(parts ...model.Expr) model.Write {
	return model.Write{Stream: streamVar, Parts: parts}
}

func lit(s string) model.Lit { return model.Lit{Value: s} }

// text returns the string form of the value x of semantic type typ,
// escaped for XML.
func text(x model.Expr, typ string) model.Expr {
	if !model.IsPrimitive(typ) && typ != "" {
		x = model.ValueOf{X: x}
	}
	if typ == model.TypeBool {
		return model.BoolString{X: x}
	}
	return model.Escaped{X: x}
}

// optional wraps stmts in a check that the property holds a value.
func optional(p *model.Property, stmts ...model.Stmt) model.Stmt {
	if p.Required || p.HasDefault() || p.Fixed {
		return model.Block(stmts)
	}
	return model.If{
		Cond: model.IsSet{X: model.Prop{Name: p.Name}, Type: p.Type},
		Then: stmts,
	}
}

// writeXML adds the method serializing c as an XML element:
// attributes first, then either the text value or the child
// elements in declaration order.
func (r *run) writeXML(c *model.Class) {
	var (
		body     []model.Stmt
		attrs    []*model.Property
		children []*model.Property
		value    *model.Property
	)
	for _, p := range c.Properties() {
		switch {
		case p.IsAttribute:
			attrs = append(attrs, p)
		case p.Name == model.ValueProperty && !p.IsCollection:
			value = p
		default:
			children = append(children, p)
		}
	}

	body = append(body, write(lit("<"), tagVar))
	for _, p := range attrs {
		prop := model.Prop{Name: p.Name}
		body = append(body, optional(p,
			write(lit(" "+p.Tag()+`="`), text(prop, p.Type), lit(`"`))))
	}
	if value == nil && len(children) == 0 {
		body = append(body, write(lit("/>")))
		c.AddMethod(r.method(body))
		return
	}
	body = append(body, write(lit(">")))

	if value != nil {
		prop := model.Prop{Name: value.Name}
		if model.IsList(value.Type) {
			item := model.Var{Name: "item"}
			body = append(body, model.ForEach{
				List: prop,
				Item: item.Name,
				Body: []model.Stmt{write(text(item, model.ElemType(value.Type)), lit(" "))},
			})
		} else {
			body = append(body, write(text(prop, value.Type)))
		}
	}
	for _, p := range children {
		body = append(body, r.writeChild(p))
	}
	body = append(body, write(lit("</"), tagVar, lit(">")))
	c.AddMethod(r.method(body))
}

func (r *run) method(body []model.Stmt) *model.Method {
	m := r.writeXMLMethod()
	m.Body = body
	return m
}

func (r *run) writeChild(p *model.Property) model.Stmt {
	prop := model.Prop{Name: p.Name}
	switch {
	case p.IsCollection:
		tag := p.Tag()
		if p.XMLName == "" {
			tag = inflection.Singular(p.Name)
		}
		return optional(p, model.Call{
			Recv:   prop,
			Method: "writeXML",
			Args:   []model.Expr{streamVar, lit(tag)},
		})
	case p.Type != "" && !model.IsPrimitive(p.Type):
		return optional(p, model.Call{
			Recv:   prop,
			Method: "writeXML",
			Args:   []model.Expr{streamVar, lit(p.Tag())},
		})
	case model.IsList(p.Type):
		item := model.Var{Name: "item"}
		return optional(p, model.ForEach{
			List: prop,
			Item: item.Name,
			Body: []model.Stmt{write(lit("<"+p.Tag()+">"), text(item, model.ElemType(p.Type)), lit("</"+p.Tag()+">"))},
		})
	}
	return optional(p, write(lit("<"+p.Tag()+">"), text(prop, p.Type), lit("</"+p.Tag()+">")))
}
