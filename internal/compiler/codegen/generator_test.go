package codegen

import (
	"strings"
	"testing"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

func strType() *ast.TypeNode {
	return &ast.TypeNode{Kind: ast.TypePrimitive, Name: "string"}
}

func primType(name string) *ast.TypeNode {
	return &ast.TypeNode{Kind: ast.TypePrimitive, Name: name}
}

func modelType(name string) *ast.TypeNode {
	return &ast.TypeNode{Kind: ast.TypeModel, Name: name}
}

func notify() *ast.Annotation {
	return &ast.Annotation{Tag: ast.AnnotationNotify}
}

func proxy(source string) *ast.Annotation {
	return &ast.Annotation{Tag: ast.AnnotationProxy, Source: source}
}

func proxyTyped(source, typeName string) *ast.Annotation {
	return &ast.Annotation{
		Tag:    ast.AnnotationProxy,
		Source: source,
		Type:   &ast.TypeNode{Kind: ast.TypePrimitive, Name: typeName},
	}
}

func proxyAs(source, customName string) *ast.Annotation {
	return &ast.Annotation{Tag: ast.AnnotationProxy, Source: source, CustomName: customName}
}

func alsoNotify(target string) *ast.Annotation {
	return &ast.Annotation{Tag: ast.AnnotationAlsoNotify, Target: target}
}

func newField(name string, typ *ast.TypeNode, annotations ...*ast.Annotation) *ast.FieldNode {
	return &ast.FieldNode{Name: name, Type: typ, Annotations: annotations}
}

func newModel(name string, fields ...*ast.FieldNode) *ast.ModelNode {
	return &ast.ModelNode{
		Name:   name,
		Bases:  []string{"Observable"},
		Fields: fields,
	}
}

// buildPlan runs the planner with an Observable-bearing capability set and
// fails the test on any diagnostic
func buildPlan(t *testing.T, model *ast.ModelNode) *plan.NotificationPlan {
	t.Helper()

	caps := plan.CapabilitySet{model.Name: true, plan.CapabilityObservable: true}
	p, diags := plan.Build(model, caps)
	if diags.HasErrors() {
		t.Fatalf("Build returned unexpected diagnostics: %s", diags.Error())
	}
	if p == nil {
		t.Fatal("Build returned no plan")
	}
	return p
}

// buildPlans runs capability resolution and planning for a whole program
func buildPlans(t *testing.T, prog *ast.Program) map[string]*plan.NotificationPlan {
	t.Helper()

	capSets, capDiags := plan.ResolveCapabilities(prog)
	if capDiags.HasErrors() {
		t.Fatalf("ResolveCapabilities returned unexpected diagnostics: %s", capDiags.Error())
	}

	plans := make(map[string]*plan.NotificationPlan)
	for _, model := range prog.Models {
		p, diags := plan.Build(model, capSets[model.Name])
		if diags.HasErrors() {
			t.Fatalf("Build(%s) returned unexpected diagnostics: %s", model.Name, diags.Error())
		}
		plans[model.Name] = p
	}
	return plans
}

func TestGenerateModel_SimpleObservable(t *testing.T) {
	model := newModel("Person", newField("_firstName", strType(), notify()))

	gen := NewGenerator()
	code, err := gen.GenerateModel(model, buildPlan(t, model), Options{})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}

	// Verify package declaration and runtime import
	if !strings.Contains(code, "package models") {
		t.Error("Generated code should contain package declaration")
	}
	if !strings.Contains(code, `"github.com/beacon-lang/beacon/pkg/runtime"`) {
		t.Error("Generated code should import the notification runtime")
	}

	// Verify struct definition with embedded runtime and backing slot
	if !strings.Contains(code, "type Person struct {") {
		t.Error("Generated code should contain struct definition")
	}
	if !strings.Contains(code, "runtime.Observable") {
		t.Error("Generated code should embed runtime.Observable")
	}
	if !strings.Contains(code, "firstName string") {
		t.Error("Generated code should contain the firstName backing slot")
	}

	// Verify constructor
	if !strings.Contains(code, "func NewPerson() *Person {") {
		t.Error("Generated code should contain the constructor")
	}

	// Verify getter
	if !strings.Contains(code, "func (p *Person) FirstName() string {") {
		t.Error("Generated code should contain the FirstName getter")
	}
	if !strings.Contains(code, "return p.firstName") {
		t.Error("Getter should return the backing slot")
	}

	// Verify setter shape: detect, write, guard, notify
	if !strings.Contains(code, "func (p *Person) SetFirstName(value string) {") {
		t.Error("Generated code should contain the SetFirstName setter")
	}
	if !strings.Contains(code, "changed := p.firstName != value") {
		t.Error("Setter should detect change before writing")
	}
	if !strings.Contains(code, "p.firstName = value") {
		t.Error("Setter should write the backing slot unconditionally")
	}
	if !strings.Contains(code, "if !changed {") {
		t.Error("Setter should guard notifications on change")
	}
	if !strings.Contains(code, `p.Notify("FirstName")`) {
		t.Error("Setter should notify the property name")
	}
}

func TestGenerateModel_Documentation(t *testing.T) {
	model := newModel("Person", newField("_name", strType(), notify()))
	model.Documentation = "A person in the directory"

	gen := NewGenerator()
	code, err := gen.GenerateModel(model, buildPlan(t, model), Options{})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}

	if !strings.Contains(code, "// A person in the directory") {
		t.Error("Generated code should carry the model's doc comment")
	}
}

func TestGenerateModel_PackageNameOption(t *testing.T) {
	model := newModel("Person", newField("_name", strType(), notify()))

	gen := NewGenerator()
	code, err := gen.GenerateModel(model, buildPlan(t, model), Options{PackageName: "beaconmodels"})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}

	if !strings.Contains(code, "package beaconmodels") {
		t.Error("Generated code should use the configured package name")
	}
}

func TestGenerateModel_PlainModel(t *testing.T) {
	model := &ast.ModelNode{
		Name:   "Config",
		Fields: []*ast.FieldNode{newField("_retries", primType("int"))},
	}

	p, diags := plan.Build(model, plan.CapabilitySet{"Config": true})
	if diags.HasErrors() {
		t.Fatalf("Build returned unexpected diagnostics: %s", diags.Error())
	}

	gen := NewGenerator()
	code, err := gen.GenerateModel(model, p, Options{})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}

	// A model with no observable surface is still a plain struct with a
	// constructor, but nothing runtime-related
	if !strings.Contains(code, "type Config struct {") {
		t.Error("Generated code should contain struct definition")
	}
	if !strings.Contains(code, "retries int64") {
		t.Error("Generated code should contain the retries backing slot")
	}
	if !strings.Contains(code, "func NewConfig() *Config {") {
		t.Error("Generated code should contain the constructor")
	}
	if strings.Contains(code, "import") {
		t.Error("A plain model should not need any imports")
	}
	if strings.Contains(code, "runtime.Observable") {
		t.Error("A plain model should not embed the runtime")
	}
}

func TestGenerateModel_ExternalBaseNotEmbedded(t *testing.T) {
	model := newModel("Person", newField("_name", strType(), notify()))
	model.Bases = []string{"Observable", "Comparable"}

	gen := NewGenerator()
	code, err := gen.GenerateModel(model, buildPlan(t, model), Options{})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}

	if !strings.Contains(code, "runtime.Observable") {
		t.Error("Generated code should embed runtime.Observable")
	}
	if strings.Contains(code, "Comparable") {
		t.Error("Unknown external bases should not appear in the struct")
	}
}

func TestGenerateModel_Deterministic(t *testing.T) {
	model := newModel("Person",
		newField("_firstName", strType(), notify(), alsoNotify("FullName")),
		newField("_address", modelType("Address"), notify(), proxy("City")),
		newField("_updatedAt", primType("timestamp"), notify()),
	)
	p := buildPlan(t, model)

	gen := NewGenerator()
	first, err := gen.GenerateModel(model, p, Options{})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}
	second, err := gen.GenerateModel(model, p, Options{})
	if err != nil {
		t.Fatalf("GenerateModel failed: %v", err)
	}

	if first != second {
		t.Error("Generating the same plan twice should produce identical output")
	}
}

func TestGenerateProgram_OneFilePerModel(t *testing.T) {
	prog := &ast.Program{Models: []*ast.ModelNode{
		newModel("Person", newField("_name", strType(), notify())),
		newModel("Address", newField("_city", strType(), notify())),
	}}

	gen := NewGenerator()
	files, err := gen.GenerateProgram(prog, buildPlans(t, prog), Options{})
	if err != nil {
		t.Fatalf("GenerateProgram failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("GenerateProgram returned %d files, want 2", len(files))
	}
	if !strings.Contains(files["person.go"], "type Person struct {") {
		t.Error("person.go should contain the Person struct")
	}
	if !strings.Contains(files["address.go"], "type Address struct {") {
		t.Error("address.go should contain the Address struct")
	}
}

func TestGenerateProgram_DeclaredBaseEmbedding(t *testing.T) {
	person := newModel("Person", newField("_name", strType(), notify()))
	employee := &ast.ModelNode{
		Name:   "Employee",
		Bases:  []string{"Person"},
		Fields: []*ast.FieldNode{newField("_badge", strType(), notify())},
	}
	prog := &ast.Program{Models: []*ast.ModelNode{person, employee}}

	gen := NewGenerator()
	files, err := gen.GenerateProgram(prog, buildPlans(t, prog), Options{})
	if err != nil {
		t.Fatalf("GenerateProgram failed: %v", err)
	}

	personCode := files["person.go"]
	employeeCode := files["employee.go"]

	if !strings.Contains(personCode, "runtime.Observable") {
		t.Error("person.go should embed runtime.Observable")
	}

	// Employee reaches Notify through the embedded Person, not through a
	// second runtime embedding
	if !strings.Contains(employeeCode, "\tPerson\n") {
		t.Error("employee.go should embed Person by value")
	}
	if strings.Contains(employeeCode, "runtime.Observable") {
		t.Error("employee.go should not embed the runtime directly")
	}
	if !strings.Contains(employeeCode, `e.Notify("Badge")`) {
		t.Error("employee.go setters should notify through the promoted method")
	}
}

func TestGenerateProgram_SkipsModelsWithoutPlans(t *testing.T) {
	prog := &ast.Program{Models: []*ast.ModelNode{
		newModel("Person", newField("_name", strType(), notify())),
		newModel("Broken", newField("_x", strType(), notify())),
	}}

	plans := buildPlans(t, prog)
	plans["Broken"] = nil

	gen := NewGenerator()
	files, err := gen.GenerateProgram(prog, plans, Options{})
	if err != nil {
		t.Fatalf("GenerateProgram failed: %v", err)
	}

	if _, ok := files["person.go"]; !ok {
		t.Error("GenerateProgram should still emit models with plans")
	}
	if _, ok := files["broken.go"]; ok {
		t.Error("GenerateProgram should skip models without a plan")
	}
}
