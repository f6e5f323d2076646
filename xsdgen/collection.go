package xsdgen

import (
	"fmt"

	"github.com/CognitoIQ/xsdclass/model"
	"github.com/CognitoIQ/xsdclass/xsd"
)

// A collection records the occurrence bounds a collection class was
// generated with.
type collection struct {
	item     string
	min, max int
}

// collectionName returns the name of the class holding a list of
// items of semantic type item.
func collectionName(item string) string {
	switch item {
	case "":
		return "MixedCollection"
	}
	if model.IsList(item) {
		item = model.ElemType(item) + "List"
	}
	return ucfirst(item) + "Collection"
}

// collection returns the name of the collection class for items of
// semantic type item, generating it on first use. The class enforces
// the occurrence bounds of the first element that used it.
func (r *run) collection(item, itemFQN string, min, max int) (string, error) {
	name := collectionName(item)
	if prev, ok := r.collections[name]; ok {
		if prev.min != min || prev.max != max {
			r.logf("%s: keeping occurrence bounds [%d, %d], ignoring [%d, %d]",
				name, prev.min, prev.max, min, max)
		}
		return name, nil
	}
	r.collections[name] = &collection{item: item, min: min, max: max}
	return name, r.write(r.collectionClass(name, item, itemFQN, min, max))
}

func (r *run) collectionClass(name, item, itemFQN string, min, max int) *model.Class {
	c := r.newClass(nsValueObject, name)
	c.SetComment(fmt.Sprintf("%s holds a list of %s values.", name, itemLabel(item)))
	use(c, itemFQN)

	items := model.NewProperty("items", item+"[]")
	if item == "" {
		items.Type = model.TypeArray
	}
	items.Default = []interface{}{}
	items.Fixed = true
	items.Immutable = true
	items.CreateGetter = false
	items.Required = true
	c.AddProperty(items)

	list := model.Prop{Name: "items"}
	add := model.NewMethod("add", model.Argument{Name: "item", Type: item})
	add.Doc = "Appends item to the collection."
	if max != xsd.Unbounded && max > 0 {
		add.Body = append(add.Body, model.Guard{
			Cond:    model.Binary{Op: model.Ge, X: model.Count{X: list}, Y: model.Lit{Value: int64(max)}},
			Message: fmt.Sprintf("collection can have at most %d item(s)", max),
		})
		add.Throw(model.ValidationFailure)
	}
	add.Body = append(add.Body, model.Append{List: list, Item: model.Var{Name: "item"}})
	c.AddMethod(add)

	all := model.NewMethod("all")
	all.Doc = "Returns the items of the collection."
	all.Returns = items.Type
	if min > 0 {
		all.Body = append(all.Body, model.Guard{
			Cond:    model.Binary{Op: model.Gt, X: model.Lit{Value: int64(min)}, Y: model.Count{X: list}},
			Message: fmt.Sprintf("collection must have at least %d item(s)", min),
		})
		all.Throw(model.ValidationFailure)
	}
	all.Body = append(all.Body, model.Return{X: list})
	c.AddMethod(all)

	m := r.writeXMLMethod()
	m.Doc = "Writes every item as an XML element named tagName."
	x := model.Var{Name: "item"}
	var each model.Stmt
	if item != "" && !model.IsPrimitive(item) {
		each = model.Call{Recv: x, Method: "writeXML", Args: []model.Expr{streamVar, tagVar}}
	} else {
		each = write(lit("<"), tagVar, lit(">"), text(x, item), lit("</"), tagVar, lit(">"))
	}
	m.Body = []model.Stmt{model.ForEach{List: list, Item: x.Name, Body: []model.Stmt{each}}}
	c.AddMethod(m)

	r.finish(c)
	return c
}

func itemLabel(item string) string {
	if item == "" {
		return "untyped"
	}
	return item
}
