package tooling

import (
	"fmt"
	"strings"
)

// Hover represents hover information for a symbol
type Hover struct {
	// Contents is the hover text (markdown formatted)
	Contents string

	// Range is the range of the symbol
	Range Range
}

// buildHover creates hover information for a symbol
func buildHover(symbol *Symbol) *Hover {
	var content strings.Builder

	content.WriteString("```beacon\n")
	switch symbol.Kind {
	case SymbolKindModel:
		content.WriteString(symbol.Detail)

	case SymbolKindField:
		content.WriteString(symbol.Detail)

	case SymbolKindProperty:
		content.WriteString(fmt.Sprintf("%s: %s", symbol.Name, symbol.Type))
	}
	content.WriteString("\n```\n\n")

	if symbol.Documentation != "" {
		content.WriteString(symbol.Documentation)
		content.WriteString("\n\n")
	}

	if symbol.ContainerName != "" {
		content.WriteString(fmt.Sprintf("*In model:* `%s`\n\n", symbol.ContainerName))
	}

	switch symbol.Kind {
	case SymbolKindField:
		content.WriteString("---\n\n")
		content.WriteString("**Field**\n\n")
		if strings.HasPrefix(symbol.Name, "_") {
			content.WriteString("Backing storage, not part of the generated surface\n")
		}
		if len(symbol.Synthesizes) > 0 {
			quoted := make([]string, len(symbol.Synthesizes))
			for i, name := range symbol.Synthesizes {
				quoted[i] = fmt.Sprintf("`%s`", name)
			}
			content.WriteString(fmt.Sprintf("\nGenerates %s\n", strings.Join(quoted, ", ")))
		}

	case SymbolKindProperty:
		content.WriteString("---\n\n")
		if symbol.ProxySource != "" {
			content.WriteString("**Proxy property**\n\n")
			content.WriteString(fmt.Sprintf("Forwards to `%s` on the nested model\n\n", symbol.ProxySource))
		} else {
			content.WriteString("**Observable property**\n\n")
		}
		if len(symbol.Notifies) > 0 {
			quoted := make([]string, len(symbol.Notifies))
			for i, name := range symbol.Notifies {
				quoted[i] = fmt.Sprintf("`%s`", name)
			}
			content.WriteString(fmt.Sprintf("Setter notifies %s on change\n", strings.Join(quoted, ", ")))
		}
	}

	return &Hover{
		Contents: content.String(),
		Range:    symbol.Range,
	}
}
