package hclcatalog

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/fsutil"
	"github.com/specialistvlad/metagrid/internal/value"
)

// Loader is the HCL-specific implementation of the catalog.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ catalog.Loader = (*Loader)(nil)

// Extensions implements catalog.Loader.
func (l *Loader) Extensions() []string { return []string{".hcl"} }

// Load discovers every .hcl file under paths and merges them into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*catalog.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL catalog loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl catalog files found in %v", paths)
	}
	logger.Debug("Discovered HCL catalog files.", "count", len(files))

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

	logger.Debug("HCL catalog loading complete.",
		"resources", len(model.Resources),
		"functions", len(model.Functions),
		"metafeatures", len(model.Metafeatures))
	return model, nil
}

// Parse decodes one HCL catalog document.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*catalog.Model, error) {
	logger := ctxlog.FromContext(ctx).With("file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL catalog %s: %w", filename, diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL catalog %s: %w", filename, diags)
	}

	model := catalog.NewModel()
	var allDiags hcl.Diagnostics
	for _, block := range content.Blocks {
		name := block.Labels[0]
		if model.Declares(name) {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate declaration",
				Detail:   fmt.Sprintf("A node named %q has already been declared.", name),
				Subject:  &block.DefRange,
			})
			continue
		}

		var blockDiags hcl.Diagnostics
		switch block.Type {
		case "resource":
			var r *catalog.Resource
			r, blockDiags = decodeResource(block)
			if r != nil {
				model.Resources[name] = r
			}
		case "function":
			var f *catalog.Function
			f, blockDiags = decodeFunction(block)
			if f != nil {
				model.Functions[name] = f
			}
		case "metafeature":
			var mf *catalog.Metafeature
			mf, blockDiags = decodeMetafeature(block)
			if mf != nil {
				model.Metafeatures[name] = mf
			}
		}
		allDiags = append(allDiags, blockDiags...)
	}

	if allDiags.HasErrors() {
		return nil, fmt.Errorf("invalid HCL catalog %s: %w", filename, allDiags)
	}

	logger.Debug("Parsed HCL catalog document.",
		"resources", len(model.Resources),
		"functions", len(model.Functions),
		"metafeatures", len(model.Metafeatures))
	return model, nil
}

func decodeResource(block *hcl.Block) (*catalog.Resource, hcl.Diagnostics) {
	content, diags := block.Body.Content(resourceSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	r := &catalog.Resource{Name: block.Labels[0]}
	if attr, ok := content.Attributes["function"]; ok {
		fn, fnDiags := nameFromExpr(attr.Expr)
		diags = append(diags, fnDiags...)
		r.Function = fn
	}
	desc, descDiags := stringAttr(content.Attributes, "description")
	diags = append(diags, descDiags...)
	r.Description = desc
	return r, diags
}

func decodeFunction(block *hcl.Block) (*catalog.Function, hcl.Diagnostics) {
	content, diags := block.Body.Content(functionSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	f := &catalog.Function{Name: block.Labels[0]}
	if attr, ok := content.Attributes["parameters"]; ok {
		params, pDiags := paramsFromExpr(attr.Expr)
		diags = append(diags, pDiags...)
		f.Parameters = params
	}
	if attr, ok := content.Attributes["returns"]; ok {
		returns, rDiags := namesFromExpr(attr.Expr)
		diags = append(diags, rDiags...)
		f.Returns = returns
	}
	desc, descDiags := stringAttr(content.Attributes, "description")
	diags = append(diags, descDiags...)
	f.Description = desc
	return f, diags
}

func decodeMetafeature(block *hcl.Block) (*catalog.Metafeature, hcl.Diagnostics) {
	content, diags := block.Body.Content(metafeatureSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	mf := &catalog.Metafeature{Name: block.Labels[0], Kind: value.KindNumber}

	fn, fnDiags := nameFromExpr(content.Attributes["function"].Expr)
	diags = append(diags, fnDiags...)
	mf.Function = fn

	if attr, ok := content.Attributes["parameters"]; ok {
		params, pDiags := paramsFromExpr(attr.Expr)
		diags = append(diags, pDiags...)
		mf.Parameters = params
	}
	if attr, ok := content.Attributes["returns"]; ok {
		returns, rDiags := namesFromExpr(attr.Expr)
		diags = append(diags, rDiags...)
		mf.Returns = returns
	}
	if attr, ok := content.Attributes["kind"]; ok {
		raw, kDiags := nameFromExpr(attr.Expr)
		diags = append(diags, kDiags...)
		if !kDiags.HasErrors() {
			kind, err := value.ParseKind(raw)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid metafeature kind",
					Detail:   err.Error(),
					Subject:  attr.Expr.Range().Ptr(),
				})
			}
			mf.Kind = kind
		}
	}
	desc, descDiags := stringAttr(content.Attributes, "description")
	diags = append(diags, descDiags...)
	mf.Description = desc
	return mf, diags
}
