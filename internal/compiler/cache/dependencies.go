package cache

import (
	"slices"
	"sort"
	"sync"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
)

// FileDependency describes one declaration file's place in the model graph
type FileDependency struct {
	Path       string   // The file path
	Models     []string // Models declared in this file
	DependsOn  []string // Files declaring models this file references
	DependedBy []string // Files referencing models declared in this file
}

// DependencyGraph tracks model references between declaration files. A file
// depends on every file declaring a model it names as a base or field type,
// and must be revisited when any of those files change.
type DependencyGraph struct {
	nodes      map[string]*FileDependency
	references map[string][]string // path -> model names the file references
	declaredIn map[string]string   // model name -> declaring path
	mu         sync.RWMutex
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:      make(map[string]*FileDependency),
		references: make(map[string][]string),
		declaredIn: make(map[string]string),
	}
}

// Record registers a parsed file, replacing whatever it declared before,
// and rebuilds the file-level edges
func (dg *DependencyGraph) Record(path string, program *ast.Program) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	models := make([]string, 0, len(program.Models))
	references := make([]string, 0)
	seen := make(map[string]bool)

	for _, model := range program.Models {
		models = append(models, model.Name)

		for _, base := range model.Bases {
			if !seen[base] {
				seen[base] = true
				references = append(references, base)
			}
		}
		for _, field := range model.Fields {
			if field.Type.Kind == ast.TypeModel && field.Type.Name != "" && !seen[field.Type.Name] {
				seen[field.Type.Name] = true
				references = append(references, field.Type.Name)
			}
		}
	}

	dg.forgetLocked(path)

	dg.nodes[path] = &FileDependency{Path: path, Models: models}
	dg.references[path] = references
	for _, name := range models {
		dg.declaredIn[name] = path
	}

	dg.rebuildEdgesLocked()
}

// RemoveFile removes a file and its declarations from the graph
func (dg *DependencyGraph) RemoveFile(path string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.forgetLocked(path)
	dg.rebuildEdgesLocked()
}

// GetDependencies returns the files that the given file depends on.
func (dg *DependencyGraph) GetDependencies(path string) []string {
	return dg.copyField(path, func(n *FileDependency) []string { return n.DependsOn })
}

// GetDependents returns the files that directly depend on the given file.
func (dg *DependencyGraph) GetDependents(path string) []string {
	return dg.copyField(path, func(n *FileDependency) []string { return n.DependedBy })
}

// GetTransitiveDependents returns every file that depends on the given file,
// directly or through a chain of other files. The result is sorted by path
// so rebuild batches come out in a stable order.
func (dg *DependencyGraph) GetTransitiveDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	seen := map[string]bool{path: true}
	result := make([]string, 0)
	queue := []string{path}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node, ok := dg.nodes[current]
		if !ok {
			continue
		}
		for _, dependent := range node.DependedBy {
			if seen[dependent] {
				continue
			}
			seen[dependent] = true
			result = append(result, dependent)
			queue = append(queue, dependent)
		}
	}
	sort.Strings(result)
	return result
}

// DeclaringFile returns the file that declares the given model
func (dg *DependencyGraph) DeclaringFile(modelName string) (string, bool) {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	path, ok := dg.declaredIn[modelName]
	return path, ok
}

// ModelsIn returns the models declared in the given file
func (dg *DependencyGraph) ModelsIn(path string) []string {
	return dg.copyField(path, func(n *FileDependency) []string { return n.Models })
}

// copyField returns a copy of one of a node's string slices, or an empty
// slice when the file is not in the graph. Copying keeps callers from
// mutating graph state through a returned reference.
func (dg *DependencyGraph) copyField(path string, field func(*FileDependency) []string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	node, ok := dg.nodes[path]
	if !ok {
		return []string{}
	}
	src := field(node)
	result := make([]string, len(src))
	copy(result, src)
	return result
}

// Clear empties the graph, dropping every node and registry entry.
func (dg *DependencyGraph) Clear() {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.nodes = make(map[string]*FileDependency)
	dg.references = make(map[string][]string)
	dg.declaredIn = make(map[string]string)
}

// Size reports how many files the graph currently tracks.
func (dg *DependencyGraph) Size() int {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	return len(dg.nodes)
}

// forgetLocked drops a file's node and every registry entry it owns.
// Callers must hold the write lock.
func (dg *DependencyGraph) forgetLocked(path string) {
	if node, exists := dg.nodes[path]; exists {
		for _, name := range node.Models {
			if dg.declaredIn[name] == path {
				delete(dg.declaredIn, name)
			}
		}
	}
	delete(dg.references, path)
	delete(dg.nodes, path)
}

// rebuildEdgesLocked recomputes file edges from the name registry. Edge
// lists are sorted so dependents come back in a stable order. Callers must
// hold the write lock.
func (dg *DependencyGraph) rebuildEdgesLocked() {
	for path, node := range dg.nodes {
		dependsOn := make([]string, 0)
		for _, ref := range dg.references[path] {
			declPath, ok := dg.declaredIn[ref]
			if !ok || declPath == path {
				continue
			}
			if !slices.Contains(dependsOn, declPath) {
				dependsOn = append(dependsOn, declPath)
			}
		}
		sort.Strings(dependsOn)
		node.DependsOn = dependsOn
		node.DependedBy = make([]string, 0)
	}

	for path, node := range dg.nodes {
		for _, dep := range node.DependsOn {
			if depNode, ok := dg.nodes[dep]; ok {
				depNode.DependedBy = append(depNode.DependedBy, path)
			}
		}
	}

	for _, node := range dg.nodes {
		sort.Strings(node.DependedBy)
	}
}
