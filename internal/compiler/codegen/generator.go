// Package codegen renders validated notification plans as Go source. Each
// model becomes one file: a struct with unexported backing slots, a
// constructor, and accessor pairs that fire change notifications through
// the runtime's Notify contract. Identical plans always produce
// byte-identical output; nothing here reads maps in iteration order.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

// DefaultRuntimeImport is the import path of the notification runtime
// generated files depend on when a model embeds Observable.
const DefaultRuntimeImport = "github.com/beacon-lang/beacon/pkg/runtime"

// Options controls the shape of the emitted files
type Options struct {
	// PackageName is the package clause for generated files
	PackageName string
	// RuntimeImport overrides the notification runtime import path
	RuntimeImport string
}

func (o Options) withDefaults() Options {
	if o.PackageName == "" {
		o.PackageName = "models"
	}
	if o.RuntimeImport == "" {
		o.RuntimeImport = DefaultRuntimeImport
	}
	return o
}

// Generator renders notification plans into Go source files
type Generator struct {
	buf      *bytes.Buffer
	indent   int
	imports  map[string]bool
	declared map[string]bool
}

// NewGenerator creates a new code generator
func NewGenerator() *Generator {
	return &Generator{
		buf:     &bytes.Buffer{},
		indent:  0,
		imports: make(map[string]bool),
	}
}

// GenerateProgram generates one Go file per model in declaration order.
// Models without a plan (those that failed validation) are skipped; their
// diagnostics travel separately. Returned keys are bare file names; the
// caller decides the output directory.
func (g *Generator) GenerateProgram(prog *ast.Program, plans map[string]*plan.NotificationPlan, opts Options) (map[string]string, error) {
	g.declared = make(map[string]bool, len(prog.Models))
	for _, model := range prog.Models {
		g.declared[model.Name] = true
	}

	files := make(map[string]string)
	for _, model := range prog.Models {
		p, ok := plans[model.Name]
		if !ok || p == nil {
			continue
		}
		code, err := g.GenerateModel(model, p, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate model %s: %w", model.Name, err)
		}
		files[strings.ToLower(model.Name)+".go"] = code
	}

	return files, nil
}

// GenerateModel generates the Go source for a single model from its
// validated plan. Embedding of declared-model bases relies on the registry
// GenerateProgram builds; called directly, only the Observable runtime is
// embedded.
func (g *Generator) GenerateModel(model *ast.ModelNode, p *plan.NotificationPlan, opts Options) (string, error) {
	opts = opts.withDefaults()
	g.reset()

	if len(model.Name) == 0 {
		return "", fmt.Errorf("codegen: model name cannot be empty (should be caught by the validator)")
	}
	if p == nil {
		return "", fmt.Errorf("codegen: model %s has no validated plan", model.Name)
	}

	g.writeLine("package %s", opts.PackageName)
	g.writeLine("")

	g.collectImports(model, p, opts)

	if len(g.imports) > 0 {
		g.writeImports()
		g.writeLine("")
	}

	g.generateStruct(model, opts)
	g.writeLine("")

	g.generateConstructor(model)

	for _, spec := range p.Specs {
		g.writeLine("")
		g.generateGetter(model, spec)
		g.writeLine("")
		g.generateSetter(model, spec)
	}

	return g.buf.String(), nil
}

// reset clears the generator state for the next file
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]bool)
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}

	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}

	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// collectImports determines which imports the generated file needs
func (g *Generator) collectImports(model *ast.ModelNode, p *plan.NotificationPlan, opts Options) {
	if embedsObservable(model) {
		g.imports[opts.RuntimeImport] = true
	}

	for _, field := range model.Fields {
		if field.Type.Kind == ast.TypePrimitive && field.Type.Name == "timestamp" {
			g.imports["time"] = true
		}
	}

	for _, spec := range p.Specs {
		if spec.Type.Kind != ast.TypePrimitive {
			continue
		}
		switch spec.Type.Name {
		case "timestamp":
			g.imports["time"] = true
		case "bytes":
			// Setters compare byte slices structurally
			g.imports["bytes"] = true
		}
	}
}

// writeImports writes the import block, stdlib first, then external
func (g *Generator) writeImports() {
	g.writeLine("import (")
	g.indent++

	var stdlibImports []string
	var externalImports []string

	for imp := range g.imports {
		if strings.Contains(imp, ".") {
			externalImports = append(externalImports, imp)
		} else {
			stdlibImports = append(stdlibImports, imp)
		}
	}

	for _, imp := range sortStrings(stdlibImports) {
		g.writeLine("%q", imp)
	}

	if len(stdlibImports) > 0 && len(externalImports) > 0 {
		g.writeLine("")
	}

	for _, imp := range sortStrings(externalImports) {
		g.writeLine("%q", imp)
	}

	g.indent--
	g.writeLine(")")
}

// toGoType converts a Beacon type to a Go type string
func toGoType(typ *ast.TypeNode) string {
	if typ.Kind == ast.TypeModel {
		return "*" + typ.Name
	}

	switch typ.Name {
	case "string":
		return "string"
	case "int":
		return "int64"
	case "float":
		return "float64"
	case "bool":
		return "bool"
	case "timestamp":
		return "time.Time"
	case "bytes":
		return "[]byte"
	default:
		return typ.Name
	}
}

// receiverName returns the single-letter receiver for a model's methods
func receiverName(modelName string) string {
	return strings.ToLower(modelName[0:1])
}

// embedsObservable reports whether the model names Observable directly in
// its base list. Capability inherited through another declared model flows
// through that model's own embedding instead.
func embedsObservable(model *ast.ModelNode) bool {
	for _, base := range model.Bases {
		if base == plan.CapabilityObservable {
			return true
		}
	}
	return false
}

// sortStrings is a simple bubble sort for string slices
func sortStrings(strs []string) []string {
	result := make([]string, len(strs))
	copy(result, strs)

	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i] > result[j] {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	return result
}
