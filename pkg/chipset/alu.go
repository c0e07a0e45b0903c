package chipset

// ALU is the Hack computer's combinational arithmetic-logic unit. Its six
// control bits are loaded straight from an Instruction's CompBits.
type ALU struct {
	zx, nx, zy, ny, f, no bool
}

// NewALU builds an ALU from explicit control bits.
func NewALU(zx, nx, zy, ny, f, no bool) ALU {
	return ALU{zx: zx, nx: nx, zy: zy, ny: ny, f: f, no: no}
}

// ALUFromBits decodes the six control bits out of a CompBits field
// (bit 5 down to bit 0: zx, nx, zy, ny, f, no).
func ALUFromBits(bits uint16) ALU {
	return ALU{
		zx: bits&0b100000 != 0,
		nx: bits&0b010000 != 0,
		zy: bits&0b001000 != 0,
		ny: bits&0b000100 != 0,
		f:  bits&0b000010 != 0,
		no: bits&0b000001 != 0,
	}
}

// Execute computes the ALU's output for signed 16-bit inputs x and y.
// Arithmetic is two's-complement with silent wraparound on overflow.
func (a ALU) Execute(x, y int16) int16 {
	if a.zx {
		x = 0
	}
	if a.nx {
		x = ^x
	}
	if a.zy {
		y = 0
	}
	if a.ny {
		y = ^y
	}

	var result int16
	if a.f {
		result = x + y // wraps per Go's defined signed-integer overflow behavior
	} else {
		result = x & y
	}

	if a.no {
		result = ^result
	}
	return result
}
