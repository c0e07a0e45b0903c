package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runInTempDir chdirs into a fresh temp directory for the duration of fn,
// restoring the original working directory afterwards. The Handler always
// writes its output relative to the cwd, so every test needs its own sandbox.
func runInTempDir(t *testing.T, fn func(dir string)) {
	t.Helper()
	dir := t.TempDir()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("unable to get working directory: %s", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("unable to chdir into tempdir: %s", err)
	}
	defer os.Chdir(cwd)

	fn(dir)
}

func TestHackAssembler(t *testing.T) {
	t.Run("Add.asm", func(t *testing.T) {
		runInTempDir(t, func(dir string) {
			source := strings.Join([]string{
				"// Computes R0 = 2 + 3",
				"@2",
				"D=A",
				"@3",
				"D=D+A",
				"@0",
				"M=D",
			}, "\n")

			input := filepath.Join(dir, "Add.asm")
			if err := os.WriteFile(input, []byte(source), 0644); err != nil {
				t.Fatalf("unable to write input fixture: %s", err)
			}

			if status := Handler([]string{input}, nil); status != 0 {
				t.Fatalf("unexpected exit status: expected 0, got %d", status)
			}

			got, err := os.ReadFile("Prog.hack")
			if err != nil {
				t.Fatalf("unable to read output file: %s", err)
			}

			want := strings.Join([]string{
				"0000000000000010",
				"1110110000010000",
				"0000000000000011",
				"1110000010010000",
				"0000000000000000",
				"1110001100001000",
			}, "\n") + "\n"

			if string(got) != want {
				t.Fatalf("output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
			}
		})
	})

	t.Run("labels and variables", func(t *testing.T) {
		runInTempDir(t, func(dir string) {
			source := strings.Join([]string{
				"(LOOP)",
				"@i",
				"M=M+1",
				"@LOOP",
				"0;JMP",
			}, "\n")

			input := filepath.Join(dir, "Loop.asm")
			if err := os.WriteFile(input, []byte(source), 0644); err != nil {
				t.Fatalf("unable to write input fixture: %s", err)
			}

			if status := Handler([]string{input}, nil); status != 0 {
				t.Fatalf("unexpected exit status: expected 0, got %d", status)
			}

			got, err := os.ReadFile("Prog.hack")
			if err != nil {
				t.Fatalf("unable to read output file: %s", err)
			}

			lines := strings.Split(strings.TrimRight(string(got), "\n"), "\n")
			if len(lines) != 4 {
				t.Fatalf("expected 4 compiled instructions, got %d", len(lines))
			}
			// '(LOOP)' resolves to ROM index 0, so the trailing jump targets address 0
			if lines[2] != "0000000000000000" {
				t.Fatalf("expected @LOOP to resolve to address 0, got %s", lines[2])
			}
			// 'i' is a fresh variable, allocated starting at address 16
			if lines[0] != "0000000000010000" {
				t.Fatalf("expected @i to resolve to address 16, got %s", lines[0])
			}
		})
	})

	t.Run("missing input reports an error", func(t *testing.T) {
		runInTempDir(t, func(dir string) {
			if status := Handler([]string{filepath.Join(dir, "NoSuchFile.asm")}, nil); status == 0 {
				t.Fatalf("expected a non-zero exit status for a missing input file")
			}
		})
	})
}
