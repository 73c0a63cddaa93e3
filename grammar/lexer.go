package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var NestLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*`, nil},

		// Identifiers (keywords are matched literally by the grammar)
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Integer literals
		{"Integer", `[0-9]+`, nil},

		// Punctuation and operators
		{"Punct", `[{}\[\]():,*<=+-]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
