package asm

import (
	"fmt"
	"io"

	"hackforge.dev/n2t/pkg/token"
)

// ----------------------------------------------------------------------------
// Asm Parser

// The Parser turns Assembler source text into an 'asm.Program' (a flat slice of
// Statement) using the shared 'token' package lexer. There's no AST stage and no
// combinator library in between: the grammar is regular enough (one statement per
// line, a handful of fixed-shape productions) that a direct recursive-descent walk
// over the token stream is both simpler and doesn't allocate an intermediate tree.
type Parser struct{ reader io.Reader }

// Initializes and returns to the caller a brand new 'Parser' struct.
// Requires the argument io.Reader 'r' to be valid and usable.
func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

// Parser entrypoint, reads the whole input upfront (the source files this tool
// targets are always small enough to fit in memory) and tokenizes once.
func (p *Parser) Parse() (Program, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read from 'io.Reader': %s", err)
	}

	tz := token.New(content)
	return p.FromTokens(tz)
}

// Walks the token stream line by line, producing one Statement per non-blank,
// non-comment-only line. Blank lines and comment-only lines are skipped entirely,
// matching the Assembler grammar's treatment of whitespace as insignificant.
func (p *Parser) FromTokens(tz *token.Tokenizer) (Program, error) {
	program := Program{}

	for !tz.IsEmpty() {
		p.skipLineSpace(tz)

		switch tz.Peek().Kind {
		case token.EOF:
			return program, nil
		case token.Newline:
			tz.Next() // blank line
			continue
		case token.Comment:
			tz.Next()
			if err := p.expectEOL(tz); err != nil {
				return nil, err
			}
			continue
		}

		stmt, err := p.parseStatement(tz)
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)

		p.skipLineSpace(tz)
		if tz.Peek().Kind == token.Comment {
			tz.Next()
		}
		if err := p.expectEOL(tz); err != nil {
			return nil, err
		}
	}

	return program, nil
}

// Dispatches to the right statement parser based on the leading token: '@' always
// starts an A Instruction, '(' always starts a Label Declaration, anything else is
// the start of a C Instruction (dest/comp/jump are all bare Text tokens).
func (p *Parser) parseStatement(tz *token.Tokenizer) (Statement, error) {
	switch tz.Peek().Kind {
	case token.Address:
		return p.parseAInst(tz)
	case token.OpenParen:
		return p.parseLabelDecl(tz)
	default:
		return p.parseCInst(tz)
	}
}

// Specialized function to parse an A Instruction: '@' followed by a label, a
// built-in symbol, or a raw numeric literal (all lexed as a single Text token).
func (p *Parser) parseAInst(tz *token.Tokenizer) (Statement, error) {
	tz.Next() // consume '@'

	tok := tz.Next()
	if tok.Kind != token.Text {
		return nil, fmt.Errorf("expected location after '@', found %s", tok.Kind)
	}

	return AInstruction{Location: tok.Text(p.src(tz))}, nil
}

// Specialized function to parse a Label Declaration: '(' SYMBOL ')'.
func (p *Parser) parseLabelDecl(tz *token.Tokenizer) (Statement, error) {
	tz.Next() // consume '('

	tok := tz.Next()
	if tok.Kind != token.Text {
		return nil, fmt.Errorf("expected label name inside '()', found %s", tok.Kind)
	}
	name := tok.Text(p.src(tz))

	if closing := tz.Next(); closing.Kind != token.CloseParen {
		return nil, fmt.Errorf("expected ')' to close label declaration, found %s", closing.Kind)
	}

	return LabelDecl{Name: name}, nil
}

// Specialized function to parse a C Instruction: [dest '='] comp [';' jump].
// The leading Text token is ambiguous between 'dest' and 'comp' until we've seen
// whether an '=' follows, so we peek one token ahead to disambiguate.
func (p *Parser) parseCInst(tz *token.Tokenizer) (Statement, error) {
	first := tz.Next()
	if first.Kind != token.Text {
		return nil, fmt.Errorf("expected start of a C Instruction, found %s", first.Kind)
	}
	firstText := first.Text(p.src(tz))

	inst := CInstruction{}

	if tz.Peek().Kind == token.Eq {
		tz.Next() // consume '='
		inst.Dest = firstText

		comp := tz.Next()
		if comp.Kind != token.Text {
			return nil, fmt.Errorf("expected computation after '=', found %s", comp.Kind)
		}
		inst.Comp = comp.Text(p.src(tz))
	} else {
		inst.Comp = firstText
	}

	if tz.Peek().Kind == token.Semicolon {
		tz.Next() // consume ';'

		jump := tz.Next()
		if jump.Kind != token.Text {
			return nil, fmt.Errorf("expected jump directive after ';', found %s", jump.Kind)
		}
		inst.Jump = jump.Text(p.src(tz))
	}

	return inst, nil
}

// Consumes any run of Whitespace tokens, leaving the cursor on the next
// meaningful token (or Newline/Comment/EOF).
func (p *Parser) skipLineSpace(tz *token.Tokenizer) {
	for tz.Peek().Kind == token.Whitespace {
		tz.Next()
	}
}

// Confirms the current line is properly terminated, either by a Newline (which is
// consumed) or by EOF (left untouched so the caller's loop condition sees it).
func (p *Parser) expectEOL(tz *token.Tokenizer) error {
	switch tok := tz.Peek(); tok.Kind {
	case token.Newline:
		tz.Next()
		return nil
	case token.EOF:
		return nil
	default:
		return fmt.Errorf("expected end of line, found %s", tok.Kind)
	}
}

// src exposes the Tokenizer's backing buffer (via its Source accessor) so
// Token.Text can slice it.
func (p *Parser) src(tz *token.Tokenizer) []byte { return tz.Source() }
