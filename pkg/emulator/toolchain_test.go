package emulator_test

import (
	"strings"
	"testing"

	"hackforge.dev/n2t/pkg/asm"
	"hackforge.dev/n2t/pkg/chipset"
	"hackforge.dev/n2t/pkg/hack"
	"hackforge.dev/n2t/pkg/ram"
	"hackforge.dev/n2t/pkg/vm"
	"hackforge.dev/n2t/pkg/vmasm"
)

// assemble runs Hack assembly text through the full assembler pipeline and
// returns a loaded ROM plus the number of emitted instructions.
func assemble(t *testing.T, source string) (ram.ROM, int) {
	t.Helper()

	parser := asm.NewParser(strings.NewReader(source))
	program, err := parser.Parse()
	if err != nil {
		t.Fatalf("parse: %s", err)
	}

	lowerer := asm.NewLowerer(program)
	hackProgram, table, err := lowerer.Lower()
	if err != nil {
		t.Fatalf("lower: %s", err)
	}

	codegen := hack.NewCodeGenerator(hackProgram, table)
	compiled, err := codegen.Generate()
	if err != nil {
		t.Fatalf("codegen: %s", err)
	}

	rom, err := hack.LoadROM(strings.NewReader(strings.Join(compiled, "\n") + "\n"))
	if err != nil {
		t.Fatalf("load rom: %s", err)
	}
	return rom, len(compiled)
}

// translate lowers VM source text to Hack assembly, optionally running the
// peephole optimizer first.
func translate(t *testing.T, source string, optimize bool) string {
	t.Helper()

	parser := vm.NewParser(strings.NewReader(source))
	module, err := parser.Parse()
	if err != nil {
		t.Fatalf("vm parse: %s", err)
	}

	nodes, err := vmasm.NewLowerer("Test").Lower(module)
	if err != nil {
		t.Fatalf("vm lower: %s", err)
	}
	if optimize {
		nodes = vmasm.Optimize(nodes)
	}
	return strings.Join(vmasm.Render(nodes), "\n") + "\n"
}

// execute steps a freshly-assembled program to completion: the stack pointer
// starts at 256 and the run ends once the PC walks past the last instruction.
// Comparison sequences only ever jump forward, so a bounded step count is
// enough to rule out runaways.
func execute(t *testing.T, rom ram.ROM, n int) *ram.RAM {
	t.Helper()

	r := ram.New()
	r.Write(0, 256) // SP
	r.Write(1, 300) // LCL

	cs := chipset.New(rom, r, true)
	for steps := 0; cs.PC() < uint16(n); steps++ {
		if steps > 100_000 {
			t.Fatal("program did not terminate")
		}
		if err := cs.Step(); err != nil {
			t.Fatalf("step: %s", err)
		}
	}
	return r
}

func TestTranslatedProgramExecutes(t *testing.T) {
	source := "push constant 7\npush constant 8\nadd\n"

	rom, n := assemble(t, translate(t, source, true))
	r := execute(t, rom, n)

	if got := r.Read(256); got != 15 {
		t.Fatalf("ram[256] = %d, want 15", got)
	}
	if got := r.Read(0); got != 257 {
		t.Fatalf("ram[0] (SP) = %d, want 257", got)
	}
}

// TestOptimizedProgramIsEquivalent checks the peephole pass against the
// emulator itself: the optimized and un-optimized renderings of the same VM
// program must agree on every live memory cell (registers, segments, and the
// stack up to the final SP). Scratch cells above SP are free to differ, since
// the whole point of the collapse is to skip the stack round trip.
func TestOptimizedProgramIsEquivalent(t *testing.T) {
	source := strings.Join([]string{
		"push constant 7",
		"pop local 0",
		"push constant 3",
		"push constant 4",
		"add",
		"push constant 7",
		"eq",
		"pop static 0",
	}, "\n") + "\n"

	plainROM, plainLen := assemble(t, translate(t, source, false))
	optROM, optLen := assemble(t, translate(t, source, true))

	if optLen >= plainLen {
		t.Fatalf("expected the optimizer to shrink the program, got %d -> %d", plainLen, optLen)
	}

	plain := execute(t, plainROM, plainLen)
	optimized := execute(t, optROM, optLen)

	sp := plain.Read(0)
	if got := optimized.Read(0); got != sp {
		t.Fatalf("SP diverges: %d (plain) vs %d (optimized)", sp, got)
	}
	for addr := uint16(0); int16(addr) <= sp; addr++ {
		if p, o := plain.Read(addr), optimized.Read(addr); p != o {
			t.Fatalf("ram[%d] diverges: %d (plain) vs %d (optimized)", addr, p, o)
		}
	}

	// and the program's actual results: local 0 holds the first push,
	// static 0 holds the truthy eq outcome
	if got := plain.Read(300); got != 7 {
		t.Fatalf("ram[300] (local 0) = %d, want 7", got)
	}
	if got := optimized.Read(300); got != 7 {
		t.Fatalf("optimized ram[300] (local 0) = %d, want 7", got)
	}
	if got := plain.Read(16); got != -1 {
		t.Fatalf("ram[16] (static 0) = %d, want -1", got)
	}
	if got := optimized.Read(16); got != -1 {
		t.Fatalf("optimized ram[16] (static 0) = %d, want -1", got)
	}
}
