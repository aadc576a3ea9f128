// Package decode implements a table-driven decoder for the 8086/80186
// real-mode instruction set, including the overlay-manager trap.
package decode

// OperandKind tags which variant of Operand is populated.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandReg8
	OperandReg16
	OperandSeg
	OperandMem
	OperandImm8
	OperandImm16
	OperandRel8
	OperandRel16
	OperandFarPtr
	OperandMoffs
)

// Reg16 index convention: 4 is SP, 5 is BP, matching the spec's data model.
const (
	RegAX = 0
	RegCX = 1
	RegDX = 2
	RegBX = 3
	RegSP = 4
	RegBP = 5
	RegSI = 6
	RegDI = 7
)

// Seg index convention: 0 extra, 1 code, 2 stack, 3 data.
const (
	SegES = 0
	SegCS = 1
	SegSS = 2
	SegDS = 3
)

// Mem describes a memory reference operand: an optional base register
// name, optional index register name, a signed displacement, the
// effective segment actually used (after applying any override), and
// the access width in bytes.
type Mem struct {
	HasBase  bool
	Base     string // "BX", "BP", "SI", "DI"
	HasIndex bool
	Index    string // "SI", "DI"
	Disp     int16
	Segment  int // one of SegES/SegCS/SegSS/SegDS
	Width    int // 1 or 2
}

// FarPtr is an absolute segment:offset operand, used by far call/jmp
// immediates.
type FarPtr struct {
	Segment uint16
	Offset  uint16
}

// Operand is a tagged union over every operand shape the decoder can
// produce. Exactly the field(s) matching Kind are meaningful.
type Operand struct {
	Kind OperandKind

	Reg int // OperandReg8 / OperandReg16: 0-7
	Seg int // OperandSeg: 0-3

	Mem Mem // OperandMem

	Imm8  uint8  // OperandImm8
	Imm16 uint16 // OperandImm16

	// Rel targets store the already-resolved absolute offset, not the
	// raw signed delta, per the data model.
	RelTarget uint16 // OperandRel8 / OperandRel16

	Far FarPtr // OperandFarPtr

	MoffsOffset  uint16 // OperandMoffs
	MoffsSegment int    // effective segment for the moffs form
	MoffsWidth   int    // access width in bytes (1 or 2) for the moffs form
}

func regOperand(width int, idx int) Operand {
	if width == 1 {
		return Operand{Kind: OperandReg8, Reg: idx}
	}
	return Operand{Kind: OperandReg16, Reg: idx}
}

func segOperand(idx int) Operand {
	return Operand{Kind: OperandSeg, Seg: idx}
}

func memOperand(m Mem) Operand {
	return Operand{Kind: OperandMem, Mem: m}
}

func imm8Operand(v uint8) Operand {
	return Operand{Kind: OperandImm8, Imm8: v}
}

func imm16Operand(v uint16) Operand {
	return Operand{Kind: OperandImm16, Imm16: v}
}

func rel8Operand(target uint16) Operand {
	return Operand{Kind: OperandRel8, RelTarget: target}
}

func rel16Operand(target uint16) Operand {
	return Operand{Kind: OperandRel16, RelTarget: target}
}

func farPtrOperand(seg, off uint16) Operand {
	return Operand{Kind: OperandFarPtr, Far: FarPtr{Segment: seg, Offset: off}}
}

func moffsOperand(off uint16, seg int, width int) Operand {
	return Operand{Kind: OperandMoffs, MoffsOffset: off, MoffsSegment: seg, MoffsWidth: width}
}
