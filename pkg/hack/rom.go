package hack

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"hackforge.dev/n2t/pkg/ram"
)

// LoadROM reads a .hack binary file — one line per instruction, each
// exactly 16 ASCII '0'/'1' characters — and returns it as a ram.ROM ready
// for a Chipset to execute. The returned ROM is always exactly ram.Size
// words long, matching the Hack computer's fixed-size instruction memory;
// any words beyond the loaded program are left zeroed, same as the
// original computer.rs copying the loaded program into a fixed-size array.
func LoadROM(r io.Reader) (ram.ROM, error) {
	rom := make(ram.ROM, ram.Size)

	scanner := bufio.NewScanner(r)
	n := 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if len(line) != 16 {
			return nil, fmt.Errorf("hack: line %d has %d characters, want 16", lineNo, len(line))
		}

		word, err := strconv.ParseUint(line, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("hack: line %d is not a 16-bit binary word: %s", lineNo, err)
		}
		if n >= ram.Size {
			return nil, fmt.Errorf("hack: program has more than %d instructions", ram.Size)
		}
		rom[n] = uint16(word)
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hack: reading rom: %s", err)
	}
	return rom, nil
}
