package dag

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
)

// Load builds and validates the dependency graph of a catalog model.
//
// Every structural problem is collected into a single *catalog.SchemaError.
// A cycle is reported as a *CycleError.
func Load(ctx context.Context, model *catalog.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Load: Starting graph construction.")
	g := newGraph()
	g.model = model

	// First pass: one node per declaration.
	for name := range model.Resources {
		g.addNode(name, KindResource)
	}
	for name := range model.Functions {
		g.addNode(name, KindFunction)
	}
	for name := range model.Metafeatures {
		g.addNode(name, KindMetafeature)
	}
	logger.Debug("Load: Node creation complete.", "node_count", len(g.nodes))

	// Second pass: validate references and link them.
	v := &validator{g: g}
	v.linkResources()
	v.linkFunctions()
	v.linkMetafeatures()
	if len(v.problems) > 0 {
		return nil, &catalog.SchemaError{Problems: v.problems}
	}
	logger.Debug("Load: Node linking complete.")

	if err := g.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Load: Cycle detection passed.")
	return g, nil
}

type validator struct {
	g        *Graph
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) link(from, to string) {
	if err := v.g.addEdge(from, to); err != nil {
		v.addf("%s: %v", to, err)
	}
}

// requireFunction checks that a `function` field names a declared function.
func (v *validator) requireFunction(owner, fn string) (*catalog.Function, bool) {
	f, ok := v.g.model.Functions[fn]
	if !ok {
		if v.g.model.Declares(fn) {
			v.addf("%s %q: function %q is not declared as a function", v.g.nodes[owner].kind, owner, fn)
		} else {
			v.addf("%s %q: function %q is not declared", v.g.nodes[owner].kind, owner, fn)
		}
		return nil, false
	}
	return f, true
}

// linkParams links named parameters. Parameters may reference resources and
// metafeatures; literals are skipped.
func (v *validator) linkParams(owner string, params []catalog.Param) {
	for _, p := range params {
		if p.IsLiteral() {
			continue
		}
		n, ok := v.g.nodes[p.Name]
		switch {
		case !ok:
			v.addf("%s %q: parameter %q is not declared", v.g.nodes[owner].kind, owner, p.Name)
		case n.kind == KindFunction:
			v.addf("%s %q: parameter %q names a function, expected a resource or metafeature", v.g.nodes[owner].kind, owner, p.Name)
		default:
			v.link(p.Name, owner)
		}
	}
}

func (v *validator) linkResources() {
	for _, name := range sortedResourceNames(v.g.model) {
		r := v.g.model.Resources[name]
		if r.IsInput() {
			continue
		}
		f, ok := v.requireFunction(name, r.Function)
		if !ok {
			continue
		}
		if !slices.Contains(f.Returns, name) {
			v.addf("resource %q: function %q does not list it in its returns", name, r.Function)
			continue
		}
		v.link(r.Function, name)
	}
}

func (v *validator) linkFunctions() {
	for _, name := range sortedFunctionNames(v.g.model) {
		f := v.g.model.Functions[name]
		v.linkParams(name, f.Parameters)
		seen := make(map[string]bool, len(f.Returns))
		for _, ret := range f.Returns {
			if seen[ret] {
				v.addf("function %q: return %q is listed more than once", name, ret)
				continue
			}
			seen[ret] = true
			v.checkReturn(name, ret)
		}
	}
}

// checkReturn enforces a single producer per cached name: a function may
// only return resources and shared metafeatures declared with that function.
func (v *validator) checkReturn(fn, ret string) {
	n, ok := v.g.nodes[ret]
	if !ok {
		v.addf("function %q: return %q is not declared", fn, ret)
		return
	}
	switch n.kind {
	case KindFunction:
		v.addf("function %q: return %q names a function", fn, ret)
	case KindResource:
		r := v.g.model.Resources[ret]
		switch {
		case r.IsInput():
			v.addf("function %q: return %q is an input resource", fn, ret)
		case r.Function != fn:
			v.addf("function %q: return %q is produced by function %q", fn, ret, r.Function)
		}
	case KindMetafeature:
		mf := v.g.model.Metafeatures[ret]
		switch {
		case mf.IsPrivateCall():
			v.addf("function %q: return %q is a metafeature with its own parameters", fn, ret)
		case mf.Function != fn:
			v.addf("function %q: return %q is produced by function %q", fn, ret, mf.Function)
		}
	}
}

func (v *validator) linkMetafeatures() {
	privateOutputs := make(map[string]string)
	for _, name := range v.g.model.MetafeatureNames() {
		mf := v.g.model.Metafeatures[name]
		f, ok := v.requireFunction(name, mf.Function)
		if !ok {
			continue
		}
		if mf.IsPrivateCall() {
			if !slices.Contains(mf.OutputNames(), name) {
				v.addf("metafeature %q: returns must include the metafeature itself", name)
			}
			v.checkPrivateReturns(name, mf.Returns, privateOutputs)
			v.linkParams(name, mf.Parameters)
		} else if !slices.Contains(f.Returns, name) {
			v.addf("metafeature %q: function %q does not list it in its returns and no parameters are given", name, mf.Function)
			continue
		}
		v.link(mf.Function, name)
	}
}

// checkPrivateReturns validates the names a private call caches its outputs
// under. Besides the metafeature itself they must be scratch names: not
// declared in the catalog and not used by another private call.
func (v *validator) checkPrivateReturns(name string, returns []string, owners map[string]string) {
	seen := make(map[string]bool, len(returns))
	for _, ret := range returns {
		if seen[ret] {
			v.addf("metafeature %q: return %q is listed more than once", name, ret)
			continue
		}
		seen[ret] = true
		if ret == name {
			continue
		}
		if v.g.model.Declares(ret) {
			v.addf("metafeature %q: return %q is declared elsewhere in the catalog", name, ret)
			continue
		}
		if owner, taken := owners[ret]; taken {
			v.addf("metafeature %q: return %q is also returned by metafeature %q", name, ret, owner)
			continue
		}
		owners[ret] = name
	}
}

func sortedResourceNames(m *catalog.Model) []string {
	names := make([]string, 0, len(m.Resources))
	for name := range m.Resources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func sortedFunctionNames(m *catalog.Model) []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
