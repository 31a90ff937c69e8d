package catalog

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/metagrid/internal/value"
)

// Model is the unified representation of a catalog, possibly merged from
// several source files.
type Model struct {
	Resources    map[string]*Resource
	Functions    map[string]*Function
	Metafeatures map[string]*Metafeature
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Resources:    make(map[string]*Resource),
		Functions:    make(map[string]*Function),
		Metafeatures: make(map[string]*Metafeature),
	}
}

// Resource is an intermediate value. An empty Function marks a primitive
// input that the caller seeds before resolution.
type Resource struct {
	Name        string
	Function    string
	Description string
}

// IsInput reports whether the resource is seeded rather than computed.
func (r *Resource) IsInput() bool { return r.Function == "" }

// Function is a named computation producing Returns, in order, from
// Parameters.
type Function struct {
	Name        string
	Parameters  []Param
	Returns     []string
	Description string
}

// Metafeature is an externally requestable result.
//
// Without Parameters the metafeature shares its function's call and must be
// one of that function's Returns. With Parameters it is a private invocation
// of the function whose outputs are named by Returns (defaulting to the
// metafeature itself).
type Metafeature struct {
	Name        string
	Function    string
	Parameters  []Param
	Returns     []string
	Kind        value.Kind
	Description string
}

// IsPrivateCall reports whether the metafeature invokes its function with
// its own parameter list.
func (m *Metafeature) IsPrivateCall() bool { return len(m.Parameters) > 0 }

// OutputNames returns the names a private invocation caches its outputs under.
func (m *Metafeature) OutputNames() []string {
	if len(m.Returns) == 0 {
		return []string{m.Name}
	}
	return m.Returns
}

// Param is a single entry of a parameter list: either a reference to a
// catalog node by Name, or a Literal value passed through unchanged.
type Param struct {
	Name    string
	Literal any
}

// Ref builds a parameter referring to a catalog node.
func Ref(name string) Param { return Param{Name: name} }

// Lit builds a literal parameter.
func Lit(v any) Param { return Param{Literal: v} }

// IsLiteral reports whether the parameter is a literal value.
func (p Param) IsLiteral() bool { return p.Name == "" }

func (p Param) String() string {
	if p.IsLiteral() {
		return fmt.Sprintf("%v", p.Literal)
	}
	return p.Name
}

// Merge adds every declaration of other into m. A name declared twice, in
// any of the three tables, is an error.
func (m *Model) Merge(other *Model) error {
	for name, r := range other.Resources {
		if m.Declares(name) {
			return fmt.Errorf("duplicate declaration of %q", name)
		}
		m.Resources[name] = r
	}
	for name, f := range other.Functions {
		if m.Declares(name) {
			return fmt.Errorf("duplicate declaration of %q", name)
		}
		m.Functions[name] = f
	}
	for name, mf := range other.Metafeatures {
		if m.Declares(name) {
			return fmt.Errorf("duplicate declaration of %q", name)
		}
		m.Metafeatures[name] = mf
	}
	return nil
}

// Declares reports whether name is declared in any table.
func (m *Model) Declares(name string) bool {
	if _, ok := m.Resources[name]; ok {
		return true
	}
	if _, ok := m.Functions[name]; ok {
		return true
	}
	_, ok := m.Metafeatures[name]
	return ok
}

// MetafeatureNames returns the sorted metafeature names.
func (m *Model) MetafeatureNames() []string {
	names := make([]string, 0, len(m.Metafeatures))
	for name := range m.Metafeatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
