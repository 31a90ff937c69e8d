package hclcatalog

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/zclconf/go-cty/cty"
)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "resource", LabelNames: []string{"name"}},
		{Type: "function", LabelNames: []string{"name"}},
		{Type: "metafeature", LabelNames: []string{"name"}},
	},
}

var resourceSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "function"},
		{Name: "description"},
	},
}

var functionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "parameters"},
		{Name: "returns"},
		{Name: "description"},
	},
}

var metafeatureSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "function", Required: true},
		{Name: "parameters"},
		{Name: "returns"},
		{Name: "kind"},
		{Name: "description"},
	},
}

// nameFromExpr accepts either a bare identifier (`get_sample`) or a string
// literal (`"get_sample"`) and returns the name it spells.
func nameFromExpr(expr hcl.Expression) (string, hcl.Diagnostics) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && len(traversal) == 1 {
		return traversal.RootName(), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid name",
			Detail:   "Expected a bare identifier or a string naming a catalog node.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	return val.AsString(), nil
}

// namesFromExpr decodes a list of names, e.g. `returns = [A, B]`.
func namesFromExpr(expr hcl.Expression) ([]string, hcl.Diagnostics) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, itemDiags := nameFromExpr(item)
		diags = append(diags, itemDiags...)
		if itemDiags.HasErrors() {
			continue
		}
		names = append(names, name)
	}
	return names, diags
}

// paramsFromExpr decodes a parameter list. Bare identifiers become
// references; everything else is evaluated without a scope and kept as a
// literal.
func paramsFromExpr(expr hcl.Expression) ([]catalog.Param, hcl.Diagnostics) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	params := make([]catalog.Param, 0, len(items))
	for _, item := range items {
		if traversal, tDiags := hcl.AbsTraversalForExpr(item); !tDiags.HasErrors() && len(traversal) == 1 {
			params = append(params, catalog.Ref(traversal.RootName()))
			continue
		}
		val, valDiags := item.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		lit, err := literalFromCty(val)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported literal parameter",
				Detail:   err.Error(),
				Subject:  item.Range().Ptr(),
			})
			continue
		}
		params = append(params, catalog.Lit(lit))
	}
	return params, diags
}

// literalFromCty converts a known primitive cty value to its Go equivalent.
// Whole numbers become int64 so they can be used as tuple indices.
func literalFromCty(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("literal parameters must be known, non-null values")
	}
	switch {
	case val.Type().Equals(cty.Number):
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case val.Type().Equals(cty.String):
		return val.AsString(), nil
	case val.Type().Equals(cty.Bool):
		return val.True(), nil
	default:
		return nil, fmt.Errorf("literal of type %s is not supported", val.Type().FriendlyName())
	}
}

func stringAttr(attrs hcl.Attributes, name string) (string, hcl.Diagnostics) {
	attr, ok := attrs[name]
	if !ok {
		return "", nil
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid attribute",
			Detail:   fmt.Sprintf("The %q attribute must be a string.", name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	return val.AsString(), nil
}
