// Package yamlcatalog implements catalog.Loader for YAML documents. Since
// YAML is a superset of JSON it also reads catalogs written in the classic
// three-table JSON layout:
//
//	{
//	  "resources":    {"X": {"function": ""}},
//	  "functions":    {"get_dataset_stats": {"parameters": ["X"], "returns": ["NumberOfInstances"]}},
//	  "metafeatures": {"NumberOfInstances": {"function": "get_dataset_stats"}}
//	}
//
// In parameter lists, strings are node references and numbers or booleans
// are literals.
package yamlcatalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/fsutil"
	"github.com/specialistvlad/metagrid/internal/value"
	"gopkg.in/yaml.v3"
)

type document struct {
	Resources    map[string]resourceDoc    `yaml:"resources"`
	Functions    map[string]functionDoc    `yaml:"functions"`
	Metafeatures map[string]metafeatureDoc `yaml:"metafeatures"`
}

type resourceDoc struct {
	Function    string `yaml:"function"`
	Description string `yaml:"description"`
}

type functionDoc struct {
	Parameters  []yaml.Node `yaml:"parameters"`
	Returns     []string    `yaml:"returns"`
	Description string      `yaml:"description"`
}

type metafeatureDoc struct {
	Function    string      `yaml:"function"`
	Parameters  []yaml.Node `yaml:"parameters"`
	Returns     []string    `yaml:"returns"`
	Kind        string      `yaml:"kind"`
	Description string      `yaml:"description"`
}

// Loader reads YAML and JSON catalogs.
type Loader struct{}

// NewLoader creates a new YAML catalog loader.
func NewLoader() *Loader { return &Loader{} }

var _ catalog.Loader = (*Loader)(nil)

// Extensions implements catalog.Loader.
func (l *Loader) Extensions() []string { return []string{".yaml", ".yml", ".json"} }

// Load implements catalog.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*catalog.Model, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.FindFilesByExtension(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no yaml or json catalog files found in %v", paths)
	}

	model := catalog.NewModel()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", file, err)
		}
		fileModel, err := l.Parse(ctx, file, src)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(fileModel); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}
	logger.Debug("YAML catalog loading complete.", "files", len(files), "metafeatures", len(model.Metafeatures))
	return model, nil
}

// Parse implements catalog.Loader.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*catalog.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", filename, err)
	}

	model := catalog.NewModel()
	var errs []error
	declare := func(name string) bool {
		if model.Declares(name) {
			errs = append(errs, fmt.Errorf("%s: duplicate declaration of %q", filename, name))
			return false
		}
		return true
	}

	for name, r := range doc.Resources {
		if declare(name) {
			model.Resources[name] = &catalog.Resource{Name: name, Function: r.Function, Description: r.Description}
		}
	}
	for name, f := range doc.Functions {
		params, err := decodeParams(f.Parameters)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: function %q: %w", filename, name, err))
			continue
		}
		if declare(name) {
			model.Functions[name] = &catalog.Function{Name: name, Parameters: params, Returns: f.Returns, Description: f.Description}
		}
	}
	for name, m := range doc.Metafeatures {
		params, err := decodeParams(m.Parameters)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: metafeature %q: %w", filename, name, err))
			continue
		}
		kind, err := value.ParseKind(m.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: metafeature %q: %w", filename, name, err))
			continue
		}
		if m.Function == "" {
			errs = append(errs, fmt.Errorf("%s: metafeature %q has no function", filename, name))
			continue
		}
		if declare(name) {
			model.Metafeatures[name] = &catalog.Metafeature{
				Name:        name,
				Function:    m.Function,
				Parameters:  params,
				Returns:     m.Returns,
				Kind:        kind,
				Description: m.Description,
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	ctxlog.FromContext(ctx).Debug("Parsed YAML catalog document.", "file", filename, "metafeatures", len(model.Metafeatures))
	return model, nil
}

// decodeParams maps string scalars to references and every other scalar
// to a literal.
func decodeParams(nodes []yaml.Node) ([]catalog.Param, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	params := make([]catalog.Param, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("parameter %d (line %d) must be a scalar", i, n.Line)
		}
		switch n.ShortTag() {
		case "!!str":
			params = append(params, catalog.Ref(n.Value))
		case "!!int":
			var v int64
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
			params = append(params, catalog.Lit(v))
		case "!!float":
			var v float64
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
			params = append(params, catalog.Lit(v))
		case "!!bool":
			var v bool
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
			params = append(params, catalog.Lit(v))
		default:
			return nil, fmt.Errorf("parameter %d (line %d) has unsupported type %s", i, n.Line, n.ShortTag())
		}
	}
	return params, nil
}
