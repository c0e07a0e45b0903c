package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/teris-io/cli"
	"hackforge.dev/n2t/pkg/vm"
	"hackforge.dev/n2t/pkg/vmasm"
)

var Description = strings.ReplaceAll(`
The VM Translator translates a single module written in the VM language into Hack
assembly code that can be further elaborated by the Assembler. The VM language is a
higher-level (bytecode-like) language tailored for use with the Hack computer arch.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	WithArg(cli.NewArg("input", "The bytecode (.vm) file to be translated")).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("[err] expected a single .vm input path, use --help\n")
		return -1
	}

	input := args[0]
	unit, err := moduleName(input)
	if err != nil {
		fmt.Printf("[err] %s\n", err)
		return -1
	}

	content, err := os.ReadFile(input)
	if err != nil {
		fmt.Printf("[err] unable to open input file: %s\n", err)
		return -1
	}

	// Instantiate a parser for the Vm module
	parser := vm.NewParser(bytes.NewReader(content))
	// Parses the input file content and extracts an in-memory 'vm.Module' from it.
	module, err := parser.Parse()
	if err != nil {
		fmt.Printf("[err] unable to complete 'parsing' pass: %s\n", err)
		return -1
	}

	// Instantiate a lowerer to convert the module to the Assembly IR
	lowerer := vmasm.NewLowerer(unit)
	nodes, err := lowerer.Lower(module)
	if err != nil {
		fmt.Printf("[err] unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// Collapses adjacent Push/Pop pairs before rendering the final text
	nodes = vmasm.Optimize(nodes)
	rendered := vmasm.Render(nodes)

	// Only touch the output file once translation has fully succeeded, so a
	// failed translation never leaves a partial/stray .asm file behind.
	outputPath := strings.TrimSuffix(input, filepath.Ext(input)) + ".asm"
	output, err := os.Create(outputPath)
	if err != nil {
		fmt.Printf("[err] unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	for _, line := range rendered {
		if _, err := fmt.Fprintf(output, "%s\n", line); err != nil {
			fmt.Printf("[err] unable to write output file: %s\n", err)
			return -1
		}
	}

	return 0
}

// moduleName validates the VM Translator's filename contract (the basename
// must start with an uppercase letter and carry a .vm extension) and returns
// the translation unit name used to namespace static variables and labels.
func moduleName(input string) (string, error) {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	if ext != ".vm" {
		return "", fmt.Errorf("input file '%s' must have a '.vm' extension", base)
	}

	stem := strings.TrimSuffix(base, ext)
	if stem == "" || !unicode.IsUpper(rune(stem[0])) {
		return "", fmt.Errorf("input file '%s' must begin with an uppercase letter", base)
	}

	return stem, nil
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
