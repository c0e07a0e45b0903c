package vmasm

import (
	"fmt"
	"strings"

	"hackforge.dev/n2t/pkg/vm"
)

// segmentRegister names the built-in pointer register backing a dynamically
// addressed segment.
var segmentRegister = map[vm.SegmentType]string{
	vm.Local:    "LCL",
	vm.Argument: "ARG",
	vm.This:     "THIS",
	vm.That:     "THAT",
}

// binaryOpComp names the ALU computation for each two-operand arithmetic/bitwise op.
var binaryOpComp = map[vm.ArithOpType]string{
	vm.Add: "D+M",
	vm.Sub: "M-D",
	vm.And: "D&M",
	vm.Or:  "D|M",
}

// compareJump names the Hack jump predicate testing 'x - y' for each comparison op.
var compareJump = map[vm.ArithOpType]string{
	vm.Eq: "JEQ",
	vm.Gt: "JGT",
	vm.Lt: "JLT",
}

// Lowerer translates a single VM translation unit (one .vm module) into a flat
// sequence of IR nodes. Static variables and the fresh labels synthesized for
// eq/gt/lt are namespaced by 'file', matching the VM language's convention
// that each file is its own class/translation unit.
type Lowerer struct {
	file    string
	counter int // monotonically increasing, used to keep eq/gt/lt labels unique
}

// NewLowerer returns a Lowerer for the translation unit named 'file' (typically
// the .vm filename without its extension).
func NewLowerer(file string) *Lowerer {
	return &Lowerer{file: file}
}

// Lower walks the module in order, appending the IR nodes for every operation.
// Each operation is preceded by a Comment node echoing the source command, so
// the emitted .asm keeps a trace of the .vm program it came from.
func (l *Lowerer) Lower(module vm.Module) ([]Node, error) {
	nodes := make([]Node, 0, len(module)*4)

	for _, op := range module {
		switch tOp := op.(type) {
		case vm.ArithmeticOp:
			lowered, err := l.lowerArithmetic(tOp)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, Comment{Text: arithComment(tOp.Operation)})
			nodes = append(nodes, lowered...)

		case vm.MemoryOp:
			lowered, err := l.lowerMemory(tOp)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, Comment{Text: memoryComment(tOp)})
			nodes = append(nodes, lowered...)

		default:
			return nil, fmt.Errorf("unrecognized VM operation '%T'", op)
		}
	}

	return nodes, nil
}

func arithComment(op vm.ArithOpType) string {
	if jump, found := compareJump[op]; found {
		return fmt.Sprintf("Comparison %s", jump)
	}
	return capitalize(string(op))
}

func memoryComment(op vm.MemoryOp) string {
	return fmt.Sprintf("%s %s %d", capitalize(string(op.Operation)), op.Segment, op.Offset)
}

// capitalize uppercases the leading letter of a (known ASCII) mnemonic.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (l *Lowerer) lowerArithmetic(op vm.ArithmeticOp) ([]Node, error) {
	switch op.Operation {
	case vm.Add, vm.Sub, vm.And, vm.Or:
		return []Node{Pop{}, DecAssign{Dest: "M", Comp: binaryOpComp[op.Operation]}}, nil

	case vm.Neg:
		return []Node{TopAssign{Dest: "M", Comp: "-M"}}, nil
	case vm.Not:
		return []Node{TopAssign{Dest: "M", Comp: "!M"}}, nil

	case vm.Eq, vm.Gt, vm.Lt:
		return l.lowerComparison(op.Operation), nil

	default:
		return nil, fmt.Errorf("unrecognized arithmetic operation '%s'", op.Operation)
	}
}

// lowerComparison emits the canonical eq/gt/lt sequence: pop the right-hand
// operand, subtract it from the left-hand operand addressed by DecAssign's
// leading 'A=A-1', jump to a TRUE label on the matching sign, otherwise fall
// through setting the top of stack false, then converge on an END label.
func (l *Lowerer) lowerComparison(op vm.ArithOpType) []Node {
	trueLabel := fmt.Sprintf("%s_TRUE_%s.%d", compareJump[op], l.file, l.counter)
	endLabel := fmt.Sprintf("%s_END_%s.%d", compareJump[op], l.file, l.counter)
	l.counter++

	return []Node{
		Pop{},
		DecAssign{Dest: "D", Comp: "M-D"},
		Jump{Label: trueLabel, Cond: compareJump[op]},
		Address{Label: "SP"},
		Assign{Dest: "A", Comp: "M-1"},
		Assign{Dest: "M", Comp: "0"},
		Jump{Label: endLabel, Cond: "JMP"},
		Label{Name: trueLabel},
		Address{Label: "SP"},
		Assign{Dest: "A", Comp: "M-1"},
		Assign{Dest: "M", Comp: "-1"},
		Label{Name: endLabel},
	}
}

func (l *Lowerer) lowerMemory(op vm.MemoryOp) ([]Node, error) {
	if op.Operation == vm.Push {
		return l.lowerPush(op.Segment, op.Offset)
	}
	return l.lowerPop(op.Segment, op.Offset)
}

func (l *Lowerer) lowerPush(segment vm.SegmentType, offset uint16) ([]Node, error) {
	switch segment {
	case vm.Constant:
		return []Node{LoadConstant{Value: offset}, Push{}}, nil

	case vm.Static:
		return []Node{LoadAddress{Label: fmt.Sprintf("%s.%d", l.file, offset)}, Push{}}, nil

	case vm.Pointer:
		label, err := pointerLabel(offset)
		if err != nil {
			return nil, err
		}
		return []Node{LoadAddress{Label: label}, Push{}}, nil

	case vm.Temp:
		register, err := tempRegister(offset)
		if err != nil {
			return nil, err
		}
		return []Node{LoadAddress{Label: register}, Push{}}, nil

	case vm.Local, vm.Argument, vm.This, vm.That:
		return []Node{LoadOffset{Segment: segmentRegister[segment], Offset: offset}, Push{}}, nil

	default:
		return nil, fmt.Errorf("unsupported memory segment '%s'", segment)
	}
}

func (l *Lowerer) lowerPop(segment vm.SegmentType, offset uint16) ([]Node, error) {
	switch segment {
	case vm.Static:
		return []Node{Pop{}, WriteToAddress{Label: fmt.Sprintf("%s.%d", l.file, offset)}}, nil

	case vm.Pointer:
		label, err := pointerLabel(offset)
		if err != nil {
			return nil, err
		}
		return []Node{Pop{}, WriteToAddress{Label: label}}, nil

	case vm.Temp:
		register, err := tempRegister(offset)
		if err != nil {
			return nil, err
		}
		return []Node{Pop{}, WriteToAddress{Label: register}}, nil

	case vm.Local, vm.Argument, vm.This, vm.That:
		return []Node{
			StoreOffset{Segment: segmentRegister[segment], Offset: offset},
			Pop{},
			DerefWrite{Register: "R13"},
		}, nil

	case vm.Constant:
		return nil, fmt.Errorf("'constant' segment is not a valid pop target")

	default:
		return nil, fmt.Errorf("unsupported memory segment '%s'", segment)
	}
}

func pointerLabel(offset uint16) (string, error) {
	switch offset {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	default:
		return "", fmt.Errorf("'pointer' segment only supports offset 0 or 1, got %d", offset)
	}
}

func tempRegister(offset uint16) (string, error) {
	if offset > 7 {
		return "", fmt.Errorf("'temp' segment only supports offset 0-7, got %d", offset)
	}
	return fmt.Sprintf("R%d", 5+offset), nil
}
