package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"
	"hackforge.dev/n2t/pkg/asm"
	"hackforge.dev/n2t/pkg/hack"
)

// outputFilename is the fixed name the compiled binary is always written
// under, in the current working directory. The assembler never takes an
// output path: the Emulator expects to find its program under this exact name.
const outputFilename = "Prog.hack"

var Description = strings.ReplaceAll(`
The Hack Assembler takes assembly language code written in the Hack assembly language
and translates it into machine code that can be executed by the Hack computer. The process
involves parsing the assembly code, resolving symbols, and generating machine code.
`, "\n", " ")

var HackAssembler = cli.New(Description).
	WithArg(cli.NewArg("input", "The assembler (.asm) file to be compiled")).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("[err] expected a single .asm input path, use --help\n")
		return -1
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("[err] unable to open input file: %s\n", err)
		return -1
	}

	// Instantiate a parser for the Asm program
	parser := asm.NewParser(bytes.NewReader(input))
	// Parses the input file content and extract an in-memory 'asm.Program' from it.
	asmProgram, err := parser.Parse()
	if err != nil {
		fmt.Printf("[err] unable to complete 'parsing' pass: %s\n", err)
		return -1
	}

	// Instantiate a lowerer to convert the program from Asm to Hack
	lowerer := asm.NewLowerer(asmProgram)
	// Lowers the asm.Program to an in-memory/IR representation of its Hack counterpart 'hack.Program'.
	hackProgram, table, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("[err] unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// Now, instantiates a code generator for the Hack (compiled) program
	codegen := hack.NewCodeGenerator(hackProgram, table)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("[err] unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	// Only touch the output file once every translation pass has succeeded,
	// so a failed translation never leaves a partial/stray Prog.hack behind.
	output, err := os.Create(outputFilename)
	if err != nil {
		fmt.Printf("[err] unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	for _, comp := range compiled {
		if _, err := fmt.Fprintf(output, "%s\n", comp); err != nil {
			fmt.Printf("[err] unable to write output file: %s\n", err)
			return -1
		}
	}

	return 0
}

func main() { os.Exit(HackAssembler.Run(os.Args, os.Stdout)) }
