package lexer

import "unicode"

// TokenType identifies the type of a lexical token
type TokenType int

const (
	// Special tokens
	TOKEN_EOF TokenType = iota
	TOKEN_ERROR
	TOKEN_COMMENT

	// Keywords
	TOKEN_MODEL
	TOKEN_SEALED
	TOKEN_AS

	// Primitive type keywords
	TOKEN_TYPE_STRING
	TOKEN_TYPE_INT
	TOKEN_TYPE_FLOAT
	TOKEN_TYPE_BOOL
	TOKEN_TYPE_TIMESTAMP
	TOKEN_TYPE_BYTES

	// Annotations
	TOKEN_NOTIFY
	TOKEN_PROXY
	TOKEN_ALSO_NOTIFY

	// Identifiers and literals
	TOKEN_IDENTIFIER
	TOKEN_STRING_LITERAL

	// Delimiters
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_COLON
	TOKEN_COMMA
	TOKEN_DOT
	TOKEN_AT
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_ERROR:          "ERROR",
	TOKEN_COMMENT:        "COMMENT",
	TOKEN_MODEL:          "MODEL",
	TOKEN_SEALED:         "SEALED",
	TOKEN_AS:             "AS",
	TOKEN_TYPE_STRING:    "TYPE_STRING",
	TOKEN_TYPE_INT:       "TYPE_INT",
	TOKEN_TYPE_FLOAT:     "TYPE_FLOAT",
	TOKEN_TYPE_BOOL:      "TYPE_BOOL",
	TOKEN_TYPE_TIMESTAMP: "TYPE_TIMESTAMP",
	TOKEN_TYPE_BYTES:     "TYPE_BYTES",
	TOKEN_NOTIFY:         "NOTIFY",
	TOKEN_PROXY:          "PROXY",
	TOKEN_ALSO_NOTIFY:    "ALSO_NOTIFY",
	TOKEN_IDENTIFIER:     "IDENTIFIER",
	TOKEN_STRING_LITERAL: "STRING_LITERAL",
	TOKEN_LBRACE:         "LBRACE",
	TOKEN_RBRACE:         "RBRACE",
	TOKEN_LPAREN:         "LPAREN",
	TOKEN_RPAREN:         "RPAREN",
	TOKEN_COLON:          "COLON",
	TOKEN_COMMA:          "COMMA",
	TOKEN_DOT:            "DOT",
	TOKEN_AT:             "AT",
}

// Keywords maps keyword strings to their token types
var Keywords = map[string]TokenType{
	"model":     TOKEN_MODEL,
	"sealed":    TOKEN_SEALED,
	"as":        TOKEN_AS,
	"string":    TOKEN_TYPE_STRING,
	"int":       TOKEN_TYPE_INT,
	"float":     TOKEN_TYPE_FLOAT,
	"bool":      TOKEN_TYPE_BOOL,
	"timestamp": TOKEN_TYPE_TIMESTAMP,
	"bytes":     TOKEN_TYPE_BYTES,
}

// AnnotationKeywords maps annotation names (without @) to their token types
var AnnotationKeywords = map[string]TokenType{
	"notify":      TOKEN_NOTIFY,
	"proxy":       TOKEN_PROXY,
	"also_notify": TOKEN_ALSO_NOTIFY,
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	name, ok := TokenTypeNames[t.Type]
	if !ok {
		name = "UNKNOWN"
	}
	return name + " " + t.Lexeme
}

// IsTypeKeyword reports whether the token names a primitive field type.
func (t Token) IsTypeKeyword() bool {
	switch t.Type {
	case TOKEN_TYPE_STRING, TOKEN_TYPE_INT, TOKEN_TYPE_FLOAT,
		TOKEN_TYPE_BOOL, TOKEN_TYPE_TIMESTAMP, TOKEN_TYPE_BYTES:
		return true
	}
	return false
}

// LexError represents a lexical analysis error
type LexError struct {
	Message string
	Line    int
	Column  int
	Lexeme  string
}

// Error implements the error interface
func (e LexError) Error() string {
	return e.Message
}

// IsValidIdentifier checks if a string is a valid identifier.
// Identifiers start with a letter or underscore and contain only
// letters, digits, and underscores.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
		} else {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return false
			}
		}
	}
	return true
}
