package parser

import (
	"fmt"
	"strings"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/lexer"
)

// Parser transforms a stream of tokens into a declaration tree
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a new parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		errors:  make([]ParseError, 0),
	}
}

// Parse parses the token stream and returns the program and any errors
func (p *Parser) Parse() (*ast.Program, []ParseError) {
	program := &ast.Program{
		Models: make([]*ast.ModelNode, 0),
	}

	for !p.isAtEnd() {
		docs := p.collectDocComments()
		if p.isAtEnd() {
			break
		}
		if model := p.parseModel(docs); model != nil {
			program.Models = append(program.Models, model)
		}
	}

	return program, p.errors
}

// collectDocComments gathers a run of doc comment tokens preceding a
// declaration and joins them into one documentation string.
func (p *Parser) collectDocComments() string {
	var lines []string
	for p.check(lexer.TOKEN_COMMENT) {
		tok := p.advance()
		if text, ok := tok.Literal.(string); ok {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// parseModel parses a model declaration
func (p *Parser) parseModel(docs string) *ast.ModelNode {
	sealed := false
	startToken := p.peek()

	if p.match(lexer.TOKEN_SEALED) {
		sealed = true
	}

	modelToken := p.consume(lexer.TOKEN_MODEL, "Expected 'model' keyword")
	if modelToken.Type == lexer.TOKEN_ERROR {
		p.synchronize()
		return nil
	}
	if !sealed {
		startToken = modelToken
	}

	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected model name")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronize()
		return nil
	}

	model := &ast.ModelNode{
		Name:          nameToken.Lexeme,
		Documentation: docs,
		Sealed:        sealed,
		Bases:         make([]string, 0),
		Fields:        make([]*ast.FieldNode, 0),
		Loc:           ast.TokenLocation(startToken),
	}

	// Optional base list: ": Base1, Base2"
	if p.match(lexer.TOKEN_COLON) {
		for {
			baseToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected base name")
			if baseToken.Type == lexer.TOKEN_ERROR {
				p.synchronize()
				return nil
			}
			model.Bases = append(model.Bases, baseToken.Lexeme)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
	}

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), "Expected '{' after model name")
		p.synchronize()
		return nil
	}

	seen := make(map[string]bool)
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		if p.match(lexer.TOKEN_COMMENT) {
			continue
		}
		if p.check(lexer.TOKEN_IDENTIFIER) {
			if field := p.parseField(); field != nil {
				if seen[field.Name] {
					p.errors = append(p.errors, ParseError{
						Message:  fmt.Sprintf("Duplicate field '%s' in model %s", field.Name, model.Name),
						Location: field.Loc,
						Near:     field.Name,
					})
					continue
				}
				seen[field.Name] = true
				model.Fields = append(model.Fields, field)
			}
		} else {
			p.error(p.peek(), fmt.Sprintf("Unexpected token in model body: %s", p.peek().Lexeme))
			p.advance()
		}
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), "Expected '}' after model body")
	}

	return model
}

// parseField parses a field declaration with its annotations
func (p *Parser) parseField() *ast.FieldNode {
	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected field name")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronizeToNextField()
		return nil
	}

	if !p.match(lexer.TOKEN_COLON) {
		p.error(p.peek(), "Expected ':' after field name")
		p.synchronizeToNextField()
		return nil
	}

	fieldType := p.parseType()
	if fieldType == nil {
		p.synchronizeToNextField()
		return nil
	}

	field := &ast.FieldNode{
		Name:        nameToken.Lexeme,
		Type:        fieldType,
		Annotations: make([]*ast.Annotation, 0),
		Loc:         ast.TokenLocation(nameToken),
	}

	for p.isAnnotationToken() {
		if annotation := p.parseAnnotation(); annotation != nil {
			field.Annotations = append(field.Annotations, annotation)
		}
	}

	return field
}

// parseType parses a field type: a primitive keyword or a model reference
func (p *Parser) parseType() *ast.TypeNode {
	tok := p.peek()

	if tok.IsTypeKeyword() {
		p.advance()
		return &ast.TypeNode{
			Kind: ast.TypePrimitive,
			Name: tok.Lexeme,
			Loc:  ast.TokenLocation(tok),
		}
	}

	if tok.Type == lexer.TOKEN_IDENTIFIER {
		p.advance()
		return &ast.TypeNode{
			Kind: ast.TypeModel,
			Name: tok.Lexeme,
			Loc:  ast.TokenLocation(tok),
		}
	}

	p.error(tok, "Expected field type")
	return nil
}

// isAnnotationToken reports whether the current token starts an annotation
func (p *Parser) isAnnotationToken() bool {
	switch p.peek().Type {
	case lexer.TOKEN_NOTIFY, lexer.TOKEN_PROXY, lexer.TOKEN_ALSO_NOTIFY, lexer.TOKEN_AT:
		return true
	}
	return false
}

// parseAnnotation parses a single field annotation
func (p *Parser) parseAnnotation() *ast.Annotation {
	tok := p.advance()

	switch tok.Type {
	case lexer.TOKEN_NOTIFY:
		return &ast.Annotation{
			Tag: ast.AnnotationNotify,
			Loc: ast.TokenLocation(tok),
		}
	case lexer.TOKEN_PROXY:
		return p.parseProxyAnnotation(tok)
	case lexer.TOKEN_ALSO_NOTIFY:
		return p.parseAlsoNotifyAnnotation(tok)
	case lexer.TOKEN_AT:
		p.parseUnknownAnnotation()
		return nil
	}

	return nil
}

// parseProxyAnnotation parses "@proxy(path (: type)? (, as: name)?)"
func (p *Parser) parseProxyAnnotation(proxyToken lexer.Token) *ast.Annotation {
	if !p.match(lexer.TOKEN_LPAREN) {
		p.error(p.peek(), "Expected '(' after @proxy")
		return nil
	}

	source := p.parsePropertyPath()
	if source == "" {
		p.skipToCloseParen()
		return nil
	}

	annotation := &ast.Annotation{
		Tag:    ast.AnnotationProxy,
		Source: source,
		Loc:    ast.TokenLocation(proxyToken),
	}

	// Optional forwarded-property type: "path: string"
	if p.match(lexer.TOKEN_COLON) {
		annotation.Type = p.parseType()
		if annotation.Type == nil {
			p.skipToCloseParen()
			return nil
		}
	}

	// Optional custom name: ", as: HomeCity" or ", as: \"HomeCity\""
	if p.match(lexer.TOKEN_COMMA) {
		if !p.match(lexer.TOKEN_AS) {
			p.error(p.peek(), "Expected 'as' after ',' in @proxy")
			p.skipToCloseParen()
			return nil
		}
		if !p.match(lexer.TOKEN_COLON) {
			p.error(p.peek(), "Expected ':' after 'as'")
			p.skipToCloseParen()
			return nil
		}

		nameTok := p.peek()
		switch nameTok.Type {
		case lexer.TOKEN_IDENTIFIER:
			p.advance()
			annotation.CustomName = nameTok.Lexeme
		case lexer.TOKEN_STRING_LITERAL:
			p.advance()
			if s, ok := nameTok.Literal.(string); ok {
				annotation.CustomName = s
			}
		default:
			p.error(nameTok, "Expected property name after 'as:'")
			p.skipToCloseParen()
			return nil
		}
	}

	if !p.match(lexer.TOKEN_RPAREN) {
		p.error(p.peek(), "Expected ')' after @proxy arguments")
		p.skipToCloseParen()
	}

	return annotation
}

// parseAlsoNotifyAnnotation parses "@also_notify(Property)"
func (p *Parser) parseAlsoNotifyAnnotation(alsoToken lexer.Token) *ast.Annotation {
	if !p.match(lexer.TOKEN_LPAREN) {
		p.error(p.peek(), "Expected '(' after @also_notify")
		return nil
	}

	targetToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected property name in @also_notify")
	if targetToken.Type == lexer.TOKEN_ERROR {
		p.skipToCloseParen()
		return nil
	}

	if !p.match(lexer.TOKEN_RPAREN) {
		p.error(p.peek(), "Expected ')' after @also_notify target")
		p.skipToCloseParen()
	}

	return &ast.Annotation{
		Tag:    ast.AnnotationAlsoNotify,
		Target: targetToken.Lexeme,
		Loc:    ast.TokenLocation(alsoToken),
	}
}

// parseUnknownAnnotation reports an annotation the language does not define
// and skips any argument list so parsing can continue at the next field.
func (p *Parser) parseUnknownAnnotation() {
	if p.check(lexer.TOKEN_IDENTIFIER) {
		nameToken := p.advance()
		p.error(nameToken, fmt.Sprintf("Unknown annotation: @%s", nameToken.Lexeme))
	} else {
		p.error(p.previous(), "Expected annotation name after '@'")
	}

	if p.match(lexer.TOKEN_LPAREN) {
		p.skipToCloseParen()
	}
}

// parsePropertyPath parses a dot-separated identifier path and returns it
// in source form ("address.city"). Returns "" on error.
func (p *Parser) parsePropertyPath() string {
	first := p.consume(lexer.TOKEN_IDENTIFIER, "Expected proxy target path")
	if first.Type == lexer.TOKEN_ERROR {
		return ""
	}

	segments := []string{first.Lexeme}
	for p.match(lexer.TOKEN_DOT) {
		seg := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier after '.' in proxy target")
		if seg.Type == lexer.TOKEN_ERROR {
			return ""
		}
		segments = append(segments, seg.Lexeme)
	}

	return strings.Join(segments, ".")
}

// skipToCloseParen advances past the next ')' for recovery inside annotation
// argument lists. Stops at '}' or EOF so it cannot run away.
func (p *Parser) skipToCloseParen() {
	for !p.isAtEnd() {
		if p.match(lexer.TOKEN_RPAREN) {
			return
		}
		if p.check(lexer.TOKEN_RBRACE) {
			return
		}
		p.advance()
	}
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}

	p.error(p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// error records a parse error
func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, NewParseError(message, token))
}

// synchronize implements panic mode error recovery, skipping to the next
// model boundary. The current token is checked before the first advance so
// an error reported at a 'model' keyword does not swallow that model.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(lexer.TOKEN_MODEL) || p.check(lexer.TOKEN_SEALED) {
			return
		}

		p.advance()
	}
}

// synchronizeToNextField synchronizes to the next field declaration
func (p *Parser) synchronizeToNextField() {
	p.advance()

	for !p.isAtEnd() {
		if p.check(lexer.TOKEN_IDENTIFIER) || p.check(lexer.TOKEN_RBRACE) {
			return
		}

		p.advance()
	}
}
