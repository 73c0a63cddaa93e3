package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"tessera/internal/ir"
)

func buildParser() (*participle.Parser[Program], error) {
	return participle.Build[Program](
		participle.Lexer(NestLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
}

// Parse parses textual loop-nest source into a validated tree. The name
// is only used in error positions.
func Parse(name, source string) (*ir.Tree, error) {
	parser, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	program, err := parser.ParseString(name, source)
	if err != nil {
		return nil, err
	}

	tree, err := program.Tree()
	if err != nil {
		return nil, err
	}
	if violations := ir.Validate(tree); len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		return nil, fmt.Errorf("invalid loop nest: %s", strings.Join(msgs, "; "))
	}
	return tree, nil
}

// ParseFile reads and parses a file, printing a friendly caret-style
// report for syntax errors.
func ParseFile(path string) (*ir.Tree, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	tree, err := Parse(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		return nil, err
	}
	return tree, nil
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
