package tooling

import (
	"strings"
)

// CompletionItem represents a completion suggestion
type CompletionItem struct {
	// Label is the text to display
	Label string

	// Kind categorizes the completion
	Kind CompletionKind

	// Detail provides additional information
	Detail string

	// Documentation provides help text
	Documentation string

	// InsertText is the text to insert (if different from label)
	InsertText string
}

// CompletionKind categorizes completion items
type CompletionKind int

const (
	// CompletionKindKeyword represents a keyword completion
	CompletionKindKeyword CompletionKind = iota
	// CompletionKindType represents a primitive type completion
	CompletionKindType
	// CompletionKindModel represents a declared model completion
	CompletionKindModel
	// CompletionKindAnnotation represents an annotation completion
	CompletionKindAnnotation
)

// CompletionContext describes the context at a completion position
type CompletionContext struct {
	Kind CompletionContextKind

	// PrecedingToken is the trimmed text before the cursor
	PrecedingToken string
}

// CompletionContextKind categorizes the completion context
type CompletionContextKind int

const (
	// CompletionContextUnknown represents an unknown context
	CompletionContextUnknown CompletionContextKind = iota
	// CompletionContextType represents a field type position
	CompletionContextType
	// CompletionContextBase represents a base list position
	CompletionContextBase
	// CompletionContextAnnotation represents an annotation position
	CompletionContextAnnotation
	// CompletionContextKeyword represents a declaration keyword position
	CompletionContextKeyword
)

// completionContextAt determines the completion context at a position
func completionContextAt(doc *Document, pos Position) *CompletionContext {
	lines := strings.Split(doc.Content, "\n")
	if pos.Line >= len(lines) {
		return &CompletionContext{Kind: CompletionContextUnknown}
	}

	line := lines[pos.Line]
	if pos.Character > len(line) {
		pos.Character = len(line)
	}

	prefix := line[:pos.Character]
	trimmed := strings.TrimSpace(prefix)

	if strings.HasSuffix(trimmed, "@") {
		return &CompletionContext{Kind: CompletionContextAnnotation, PrecedingToken: trimmed}
	}

	// After a colon: the base list on a model line, a type on a field line
	if idx := strings.LastIndex(trimmed, ":"); idx >= 0 {
		afterColon := strings.TrimSpace(trimmed[idx+1:])
		if afterColon == "" || !strings.Contains(afterColon, " ") {
			if strings.HasPrefix(trimmed, "model ") || strings.HasPrefix(trimmed, "sealed ") {
				return &CompletionContext{Kind: CompletionContextBase, PrecedingToken: trimmed}
			}
			return &CompletionContext{Kind: CompletionContextType, PrecedingToken: trimmed}
		}
	}

	return &CompletionContext{Kind: CompletionContextKeyword, PrecedingToken: trimmed}
}

// buildCompletions builds completion items based on context
func (a *API) buildCompletions(context *CompletionContext) []CompletionItem {
	switch context.Kind {
	case CompletionContextType:
		return a.typeCompletions()

	case CompletionContextBase:
		return a.baseCompletions()

	case CompletionContextAnnotation:
		return annotationCompletions()

	case CompletionContextKeyword:
		return keywordCompletions()

	default:
		return nil
	}
}

// typeCompletions returns the primitive types plus every declared model
func (a *API) typeCompletions() []CompletionItem {
	types := []struct {
		name   string
		detail string
	}{
		{"string", "UTF-8 text"},
		{"int", "64-bit integer"},
		{"float", "64-bit floating point number"},
		{"bool", "Boolean (true/false)"},
		{"timestamp", "Date and time"},
		{"bytes", "Raw byte buffer"},
	}

	items := make([]CompletionItem, 0, len(types))
	for _, t := range types {
		items = append(items, CompletionItem{
			Label:         t.name,
			Kind:          CompletionKindType,
			Detail:        t.detail,
			Documentation: t.detail,
			InsertText:    t.name,
		})
	}

	return append(items, a.declaredModelCompletions()...)
}

// baseCompletions returns the runtime capability plus every declared model
func (a *API) baseCompletions() []CompletionItem {
	items := []CompletionItem{
		{
			Label:         "Observable",
			Kind:          CompletionKindModel,
			Detail:        "Runtime notifying capability",
			Documentation: "Embeds the runtime observer registry; required for @notify, @proxy, and @also_notify",
			InsertText:    "Observable",
		},
	}
	return append(items, a.declaredModelCompletions()...)
}

func (a *API) declaredModelCompletions() []CompletionItem {
	items := make([]CompletionItem, 0)
	for _, sym := range a.index.SearchSymbols("") {
		if sym.Kind != SymbolKindModel {
			continue
		}
		items = append(items, CompletionItem{
			Label:         sym.Name,
			Kind:          CompletionKindModel,
			Detail:        sym.Detail,
			Documentation: sym.Documentation,
			InsertText:    sym.Name,
		})
	}
	return items
}

// annotationCompletions returns the observable annotations
func annotationCompletions() []CompletionItem {
	annotations := []struct {
		name   string
		detail string
		insert string
	}{
		{"@notify", "Generate a notifying property for this field", "@notify"},
		{"@proxy", "Forward a property of the model this field holds", "@proxy($0)"},
		{"@also_notify", "Notify another property when this one changes", "@also_notify($0)"},
	}

	items := make([]CompletionItem, len(annotations))
	for i, a := range annotations {
		items[i] = CompletionItem{
			Label:         a.name,
			Kind:          CompletionKindAnnotation,
			Detail:        a.detail,
			Documentation: a.detail,
			InsertText:    a.insert,
		}
	}
	return items
}

// keywordCompletions returns declaration keywords
func keywordCompletions() []CompletionItem {
	keywords := []struct {
		name   string
		detail string
	}{
		{"model", "Declare a new model"},
		{"sealed", "Declare a model whose generated types are final"},
	}

	items := make([]CompletionItem, len(keywords))
	for i, k := range keywords {
		items[i] = CompletionItem{
			Label:         k.name,
			Kind:          CompletionKindKeyword,
			Detail:        k.detail,
			Documentation: k.detail,
			InsertText:    k.name,
		}
	}
	return items
}
