package vm

import (
	"fmt"
	"io"
	"strconv"

	"hackforge.dev/n2t/pkg/token"
)

// ----------------------------------------------------------------------------
// Vm Parser

// The Parser turns VM source text into an in-memory 'vm.Module' using the shared
// 'token' package lexer. The VM grammar is line-oriented and every lexeme (an
// operation mnemonic, a segment name, a numeric offset) is a bare word, so the
// same Tokenizer built for the Assembler dialect covers it without modification:
// there's no need for a second hand-rolled scanner, just a different grammar
// walked over the same token stream.
type Parser struct{ reader io.Reader }

// Initializes and returns to the caller a brand new 'Parser' struct.
// Requires the argument io.Reader 'r' to be valid and usable.
func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

// Parser entrypoint, reads the whole input upfront and tokenizes once.
func (p *Parser) Parse() (Module, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read from 'io.Reader': %s", err)
	}

	tz := token.New(content)
	return p.FromTokens(tz)
}

// arithMnemonics maps each zero-argument arithmetic/logical mnemonic to its
// ArithOpType; segmentMnemonics maps each segment name a push/pop takes.
var arithMnemonics = map[string]ArithOpType{
	"eq": Eq, "gt": Gt, "lt": Lt,
	"add": Add, "sub": Sub, "neg": Neg,
	"not": Not, "and": And, "or": Or,
}

var segmentMnemonics = map[string]SegmentType{
	"argument": Argument, "local": Local, "static": Static, "constant": Constant,
	"this": This, "that": That, "temp": Temp, "pointer": Pointer,
}

// Walks the token stream line by line, producing one Operation per non-blank,
// non-comment-only line.
func (p *Parser) FromTokens(tz *token.Tokenizer) (Module, error) {
	module := Module{}

	for !tz.IsEmpty() {
		p.skipLineSpace(tz)

		switch tz.Peek().Kind {
		case token.EOF:
			return module, nil
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

		op, err := p.parseOperation(tz)
		if err != nil {
			return nil, err
		}
		module = append(module, op)

		p.skipLineSpace(tz)
		if tz.Peek().Kind == token.Comment {
			tz.Next()
		}
		if err := p.expectEOL(tz); err != nil {
			return nil, err
		}
	}

	return module, nil
}

// Dispatches on the line's leading mnemonic: 'push'/'pop' start a MemoryOp,
// anything else must be a zero-argument ArithmeticOp mnemonic.
func (p *Parser) parseOperation(tz *token.Tokenizer) (Operation, error) {
	mnemonicTok := tz.Next()
	if mnemonicTok.Kind != token.Text {
		return nil, fmt.Errorf("expected an operation mnemonic, found %s", mnemonicTok.Kind)
	}
	mnemonic := mnemonicTok.Text(tz.Source())

	switch mnemonic {
	case "push", "pop":
		return p.parseMemoryOp(tz, OperationType(mnemonic))
	default:
		if op, found := arithMnemonics[mnemonic]; found {
			return ArithmeticOp{Operation: op}, nil
		}
		return nil, fmt.Errorf("unrecognized VM operation '%s'", mnemonic)
	}
}

// Specialized function to parse a Memory operation: '{push|pop} segment offset'.
func (p *Parser) parseMemoryOp(tz *token.Tokenizer, kind OperationType) (Operation, error) {
	p.skipLineSpace(tz)
	segmentTok := tz.Next()
	if segmentTok.Kind != token.Text {
		return nil, fmt.Errorf("expected a memory segment, found %s", segmentTok.Kind)
	}
	segmentName := segmentTok.Text(tz.Source())
	segment, found := segmentMnemonics[segmentName]
	if !found {
		return nil, fmt.Errorf("unrecognized memory segment '%s'", segmentName)
	}

	p.skipLineSpace(tz)
	offsetTok := tz.Next()
	if offsetTok.Kind != token.Text {
		return nil, fmt.Errorf("expected a numeric offset, found %s", offsetTok.Kind)
	}
	offset, err := strconv.ParseUint(offsetTok.Text(tz.Source()), 10, 16)
	if err != nil || offset >= 32768 {
		return nil, fmt.Errorf("invalid offset '%s': must be in range [0, 32768)", offsetTok.Text(tz.Source()))
	}

	return MemoryOp{Operation: kind, Segment: segment, Offset: uint16(offset)}, nil
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
