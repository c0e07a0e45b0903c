package asm

import (
	"fmt"
	"regexp"
	"strconv"

	"hackforge.dev/n2t/pkg/hack"
)

// symbolPattern matches a well-formed Assembler/VM symbol: first character must
// not be a digit, remaining characters may be alphanumeric or one of '_.$:'.
var symbolPattern = regexp.MustCompile(`^[A-Za-z_.$:][A-Za-z0-9_.$:]*$`)

var allDigits = regexp.MustCompile(`^[0-9]+$`)

// ----------------------------------------------------------------------------
// Asm Lowerer

// The Lowerer takes an 'asm.Program' and produces its 'hack.Program' counterpart.
//
// The program is a flat list of statements, walked in source order. For each instruction
// we produce its 'hack.Instruction' counterpart (either A Instruction or C Instruction)
// as well as validating the input before proceeding.
type Lowerer struct{ program Program }

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program to be not nil nor empty.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p}
}

// Triggers the lowering process. It iterates statement by statement and calls the
// specified helper function based on the statement type, collecting label declarations
// into the symbol table at the index of the next instruction.
func (l *Lowerer) Lower() (hack.Program, hack.SymbolTable, error) {
	converted, table := []hack.Instruction{}, map[string]uint16{}

	if l.program == nil || len(l.program) == 0 {
		return nil, nil, fmt.Errorf("the given 'program' is empty")
	}

	for _, asmInst := range l.program {
		switch tAsmInst := asmInst.(type) {
		case AInstruction: // Converts 'asm.AInstruction' to 'hack.AInstruction'
			hackInst, err := l.HandleAInst(tAsmInst)
			if hackInst == nil || err != nil {
				return nil, nil, err
			}
			converted = append(converted, hackInst)

		case CInstruction: // Converts 'asm.CInstruction' to 'hack.CInstruction'
			hackInst, err := l.HandleCInst(tAsmInst)
			if hackInst == nil || err != nil {
				return nil, nil, err
			}
			converted = append(converted, hackInst)

		case LabelDecl: // Adds 'asm.LabelDecl' to the 'hack.SymbolTable'
			label, err := l.HandleLabelDecl(tAsmInst)
			if label == "" || err != nil {
				return nil, nil, err
			}
			if _, found := table[label]; found {
				return nil, nil, fmt.Errorf("label '%s' is already declared", label)
			}
			table[label] = uint16(len(converted))

		default: // Error case, unrecognized operation type
			return nil, nil, fmt.Errorf("unrecognized instruction '%T'", asmInst)
		}
	}

	return converted, table, nil
}

// Specialized function to convert a 'asm.AInstruction' node to an 'hack.AInstruction'.
func (Lowerer) HandleAInst(inst AInstruction) (hack.Instruction, error) {
	if inst.Location == "" {
		return nil, fmt.Errorf("'@' location must not be empty")
	}
	// Based on one of the following cases below (the type of the symbol) we do different things:
	// 1) If it's present in the BuiltInTable is we set the 'LocType'to 'BuiltIn' accordingly
	if _, found := hack.BuiltInTable[inst.Location]; found {
		return hack.AInstruction{LocType: hack.BuiltIn, LocName: inst.Location}, nil
	}
	// 2) A run of decimal digits is a numeric constant; it must fit the 15 bits
	// an A Instruction can address (0..32767), anything larger is rejected
	// outright rather than silently falling through to variable allocation.
	if allDigits.MatchString(inst.Location) {
		value, err := strconv.ParseUint(inst.Location, 10, 32)
		if err != nil || value > uint64(hack.MaxAddressableMemory) {
			return nil, fmt.Errorf("numeric constant '%s' exceeds the maximum addressable location (%d)", inst.Location, hack.MaxAddressableMemory)
		}
		return hack.AInstruction{LocType: hack.Raw, LocName: inst.Location}, nil
	}
	// 3) Else it must be a well-formed user defined label/symbol
	if digit := inst.Location[0]; digit >= '0' && digit <= '9' {
		return nil, fmt.Errorf("symbol '%s' must not begin with a digit", inst.Location)
	}
	if !symbolPattern.MatchString(inst.Location) {
		return nil, fmt.Errorf("symbol '%s' contains an invalid character", inst.Location)
	}
	return hack.AInstruction{LocType: hack.Label, LocName: inst.Location}, nil
}

// Specialized function to convert a 'asm.CInstruction' node to an 'hack.CInstruction'.
func (Lowerer) HandleCInst(inst CInstruction) (hack.Instruction, error) {
	if inst.Comp == "" { // Pre-check: CInstruction.Comp should always be provided
		return nil, fmt.Errorf("'Comp' sub-instruction should always be provided")
	}

	if inst.Dest != "" && inst.Jump == "" {
		return hack.CInstruction{Dest: inst.Dest, Comp: inst.Comp}, nil
	}
	if inst.Jump != "" && inst.Dest == "" {
		return hack.CInstruction{Comp: inst.Comp, Jump: inst.Jump}, nil
	}

	return nil, fmt.Errorf("expected either node 'Dest' or 'Jump' sub-instructions")
}

// Specialized function to extract from a 'asm.LabelDecl' node to the identifier of the label.
func (Lowerer) HandleLabelDecl(inst LabelDecl) (string, error) {
	if inst.Name == "" {
		return "", fmt.Errorf("label declaration must not be empty")
	}
	if digit := inst.Name[0]; digit >= '0' && digit <= '9' {
		return "", fmt.Errorf("label '%s' must not begin with a digit", inst.Name)
	}
	if !symbolPattern.MatchString(inst.Name) {
		return "", fmt.Errorf("label '%s' contains an invalid character", inst.Name)
	}
	return inst.Name, nil
}
