package lexer

import (
	"fmt"
	"strings"
)

// Lexer performs lexical analysis on Beacon source code
type Lexer struct {
	source  string
	start   int
	current int
	line    int
	column  int
	tokens  []Token
	errors  []LexError
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens scans the source code and returns all tokens
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

func (l *Lexer) scanToken() {
	ch := l.advance()

	switch ch {
	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 1
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case ':':
		l.addToken(TOKEN_COLON)
	case ',':
		l.addToken(TOKEN_COMMA)
	case '.':
		l.addToken(TOKEN_DOT)
	case '@':
		l.annotation()
	case '"':
		l.string()
	case '/':
		if l.match('/') {
			if l.peek() == '/' {
				l.advance()
				l.docComment()
			} else {
				for l.peek() != '\n' && !l.isAtEnd() {
					l.advance()
				}
			}
		} else {
			l.addError(fmt.Sprintf("Unexpected character: '%c'", ch))
		}
	default:
		if isAlpha(ch) {
			l.identifier()
		} else {
			l.addError(fmt.Sprintf("Unexpected character: '%c'", ch))
		}
	}
}

// annotation scans an annotation starting at '@'. Known annotation names
// become a single token covering "@name"; unknown names produce an '@'
// token followed by an identifier so the parser can report them.
func (l *Lexer) annotation() {
	nameStart := l.current
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	name := l.source[nameStart:l.current]

	if name == "" {
		l.addError("Expected annotation name after '@'")
		return
	}

	if tokenType, ok := AnnotationKeywords[name]; ok {
		l.addToken(tokenType)
		return
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_AT,
		Lexeme: "@",
		Line:   l.line,
		Column: l.column - (l.current - l.start),
	})
	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_IDENTIFIER,
		Lexeme: name,
		Line:   l.line,
		Column: l.column - len(name),
	})
}

// string scans a string literal, handling escape sequences
func (l *Lexer) string() {
	var value strings.Builder

	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			// The newline itself is consumed below; advance restores 1
			l.line++
			l.column = 0
		}

		if l.peek() == '\\' {
			l.advance()
			escaped := l.advance()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '\\':
				value.WriteByte('\\')
			case '"':
				value.WriteByte('"')
			default:
				value.WriteByte(escaped)
			}
		} else {
			value.WriteByte(l.advance())
		}
	}

	if l.isAtEnd() {
		l.addError("Unterminated string")
		return
	}

	l.advance() // Closing "

	l.addTokenWithLiteral(TOKEN_STRING_LITERAL, value.String())
}

// docComment scans the text of a '///' comment and emits it as a token.
// The parser attaches runs of these to the following declaration.
func (l *Lexer) docComment() {
	textStart := l.current
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
	text := strings.TrimSpace(l.source[textStart:l.current])
	l.addTokenWithLiteral(TOKEN_COMMENT, text)
}

// identifier scans an identifier or keyword
func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]
	tokenType, ok := Keywords[text]
	if !ok {
		tokenType = TOKEN_IDENTIFIER
	}

	l.addToken(tokenType)
}

func (l *Lexer) advance() byte {
	ch := l.source[l.current]
	l.current++
	l.column++
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() {
		return false
	}
	if l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	lexeme := l.source[l.start:l.current]
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
	})
}

func (l *Lexer) addError(message string) {
	column := l.column - (l.current - l.start)
	if column < 1 {
		column = 1
	}
	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  column,
		Lexeme:  l.source[l.start:l.current],
	})
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || (ch >= '0' && ch <= '9')
}
