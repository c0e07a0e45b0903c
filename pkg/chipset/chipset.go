// Package chipset implements the Hack computer's single-cycle execution
// core: the instruction decoder, the ALU, and the fetch-decode-execute
// Chipset that drives them against shared RAM and private ROM.
package chipset

import (
	"github.com/pkg/errors"

	"hackforge.dev/n2t/pkg/ram"
)

// Chipset is the fetch-decode-execute core of the Hack computer. It owns
// the program counter and the A/D registers; RAM is shared with other
// threads (e.g. the host snapshotting video memory) and ROM is read-only
// after load.
type Chipset struct {
	rom ram.ROM
	ram *ram.RAM

	pc    uint16
	dReg  int16
	aReg  uint16
	debug bool
}

// New builds a Chipset over the given ROM image and shared RAM. Bounds
// checking (PC, RAM address, and negative-address-write guards) is enabled
// when debug is true; production runs should disable it.
func New(rom ram.ROM, r *ram.RAM, debug bool) *Chipset {
	return &Chipset{rom: rom, ram: r, debug: debug}
}

// PC, DReg and AReg expose the chipset's registers for inspection, e.g. by
// tests or a debugger UI.
func (c *Chipset) PC() uint16   { return c.pc }
func (c *Chipset) DReg() int16  { return c.dReg }
func (c *Chipset) AReg() uint16 { return c.aReg }

// Step executes exactly one fetch-decode-execute cycle.
//
// Ordering is significant: the write to RAM[aReg] happens (step 5) before
// aReg itself is possibly updated (step 6), so a "M=...;A=..." combination
// commits its RAM write to the OLD address, matching the hardware.
func (c *Chipset) Step() error {
	word, err := c.fetch()
	if err != nil {
		return err
	}

	if word.IsAddress() {
		c.aReg = word.Address()
		return nil
	}

	alu := ALUFromBits(word.CompBits())

	var y int16
	if word.ABit() {
		if err := c.checkMemoryBounds(c.aReg); err != nil {
			return err
		}
		y = c.ram.Read(c.aReg)
	} else {
		y = int16(c.aReg)
	}
	result := alu.Execute(c.dReg, y)

	if word.DestMem() {
		if err := c.checkMemoryBounds(c.aReg); err != nil {
			return err
		}
		c.ram.Write(c.aReg, result)
	}
	if word.DestAddr() {
		if err := c.checkAddressType(result); err != nil {
			return err
		}
		c.aReg = uint16(result)
	}
	if word.DestData() {
		c.dReg = result
	}
	if word.Jump().Cmp(result) {
		if err := c.checkROMBounds(c.aReg); err != nil {
			return err
		}
		c.pc = c.aReg
	}
	return nil
}

func (c *Chipset) fetch() (Instruction, error) {
	if err := c.checkROMBounds(c.pc); err != nil {
		return 0, err
	}
	word := Instruction(c.rom[c.pc])
	c.pc++
	return word, nil
}

// checkMemoryBounds, checkROMBounds and checkAddressType guard invariants
// that only a miscompiled or hand-assembled program can violate. They are
// no-ops outside debug mode so the hot path pays nothing for them.
func (c *Chipset) checkMemoryBounds(addr uint16) error {
	if !c.debug {
		return nil
	}
	if int(addr) >= ram.Size {
		return errors.Errorf("chipset: memory access out of bounds, address %d", addr)
	}
	return nil
}

func (c *Chipset) checkROMBounds(addr uint16) error {
	if !c.debug {
		return nil
	}
	if int(addr) >= ram.Size {
		return errors.Errorf("chipset: pc out of bounds, address %d", addr)
	}
	return nil
}

func (c *Chipset) checkAddressType(v int16) error {
	if !c.debug {
		return nil
	}
	if v < 0 {
		return errors.Errorf("chipset: attempt to write negative value %d as unsigned address", v)
	}
	return nil
}
