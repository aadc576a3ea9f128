package decode

// RepPrefix tags an optional string-repeat prefix attached to an
// instruction.
type RepPrefix int

const (
	RepNone RepPrefix = iota
	RepUnconditional
	RepNZ
)

// OverlayTrap carries the resolved payload of an overlay-manager
// software-interrupt trap: INT <vector> <module:u8> <offset:u16>.
type OverlayTrap struct {
	IsOverlay bool
	Module    int
	Offset    uint16
}

// Instruction is one decoded unit: its file offset, byte length, raw
// bytes, mnemonic, and up to two operands (three for the
// IMUL-immediate forms).
type Instruction struct {
	Offset int
	Length int
	Raw    []byte

	Mnemonic string
	Op1      Operand
	Op2      Operand
	// Op3 is populated only by the three-operand IMUL-immediate forms;
	// every other mnemonic leaves it at its zero value (OperandNone).
	Op3 Operand

	Rep        RepPrefix
	SegOverride int  // -1 if none, else one of SegES/SegCS/SegSS/SegDS
	Overlay    OverlayTrap
}

// IsRawByte reports whether this instruction is the single-byte
// fallback pseudo-instruction emitted for an unknown opcode or a
// truncated read, per the decoder's total-coverage policy.
func (ins Instruction) IsRawByte() bool {
	return ins.Mnemonic == rawByteMnemonic
}

const rawByteMnemonic = "DB"
