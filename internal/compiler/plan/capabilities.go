package plan

import (
	"sort"
	"strings"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
)

// CapabilityObservable is the notifying-object capability generated setters
// depend on. A model holds it when "Observable" appears anywhere in its
// resolved base chain.
const CapabilityObservable = "Observable"

// CapabilitySet is the transitive set of capability names a model resolves to
type CapabilitySet map[string]bool

// Has reports whether the set contains the named capability
func (s CapabilitySet) Has(name string) bool {
	return s[name]
}

// ResolveCapabilities computes each declared model's capability set: the
// model's own name, its declared bases, and transitively the bases of any
// base that is itself declared in the program. Bases not declared in the
// program contribute only their literal name; whatever they extend outside
// the program is unknowable here, so they never grant capabilities beyond
// themselves. Cycles in the declared base chain are reported as DCL107.
func ResolveCapabilities(program *ast.Program) (map[string]CapabilitySet, errors.ErrorList) {
	r := &capabilityResolver{
		models:   make(map[string]*ast.ModelNode),
		sets:     make(map[string]CapabilitySet),
		visiting: make(map[string]bool),
		reported: make(map[string]bool),
	}

	for _, model := range program.Models {
		r.models[model.Name] = model
	}

	result := make(map[string]CapabilitySet, len(program.Models))
	for _, model := range program.Models {
		result[model.Name] = r.resolve(model.Name)
	}

	return result, r.diags
}

type capabilityResolver struct {
	models   map[string]*ast.ModelNode
	sets     map[string]CapabilitySet
	visiting map[string]bool
	path     []string
	reported map[string]bool
	diags    errors.ErrorList
}

func (r *capabilityResolver) resolve(name string) CapabilitySet {
	if set, ok := r.sets[name]; ok {
		return set
	}

	model, declared := r.models[name]
	if !declared {
		set := CapabilitySet{name: true}
		r.sets[name] = set
		return set
	}

	if r.visiting[name] {
		r.reportCycle(name)
		return CapabilitySet{name: true}
	}

	r.visiting[name] = true
	r.path = append(r.path, name)

	set := CapabilitySet{name: true}
	for _, base := range model.Bases {
		for capability := range r.resolve(base) {
			set[capability] = true
		}
	}

	r.path = r.path[:len(r.path)-1]
	delete(r.visiting, name)
	r.sets[name] = set

	return set
}

// reportCycle records a DCL107 for the cycle closing at name. Each distinct
// cycle is reported once no matter how many models walk into it.
func (r *capabilityResolver) reportCycle(name string) {
	idx := 0
	for i, n := range r.path {
		if n == name {
			idx = i
			break
		}
	}

	members := append([]string{}, r.path[idx:]...)
	chain := append(append([]string{}, members...), name)

	key := canonicalCycleKey(members)
	if r.reported[key] {
		return
	}
	r.reported[key] = true

	r.diags = append(r.diags, errors.NewInheritanceCycle(r.models[name].Loc, chain))
}

func canonicalCycleKey(members []string) string {
	sorted := append([]string{}, members...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
