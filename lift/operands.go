// Package lift translates decoded instructions into straight-line
// target statements operating against an explicit CPU state, per the
// runtime contract of field names cpu.al..cpu.ds and the mem_read/
// mem_write/flags_*/cc_* helper families.
package lift

import (
	"fmt"

	"github.com/civrecomp/dos16recomp/decode"
)

var reg8Field = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
var reg16Field = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
var segField = [4]string{"es", "cs", "ss", "ds"}

// width returns the operand's access width in bytes, or 0 for
// operands with no inherent width (relative targets, far pointers).
func width(op decode.Operand) int {
	switch op.Kind {
	case decode.OperandReg8, decode.OperandImm8:
		return 1
	case decode.OperandReg16, decode.OperandImm16:
		return 2
	case decode.OperandMem:
		return op.Mem.Width
	}
	return 0
}

// memOffsetExpr builds the effective-offset expression for a memory
// operand: the sum of its base, index, and displacement terms.
func memOffsetExpr(m decode.Mem) string {
	terms := make([]string, 0, 3)
	if m.HasBase {
		terms = append(terms, "cpu."+baseFieldName(m.Base))
	}
	if m.HasIndex {
		terms = append(terms, "cpu."+baseFieldName(m.Index))
	}
	if m.Disp != 0 || len(terms) == 0 {
		if m.Disp < 0 {
			if len(terms) == 0 {
				terms = append(terms, fmt.Sprintf("0x%04X", uint16(m.Disp)))
			} else {
				return fmt.Sprintf("%s-0x%X", joinPlus(terms), -int(m.Disp))
			}
		} else {
			terms = append(terms, fmt.Sprintf("0x%X", m.Disp))
		}
	}
	return joinPlus(terms)
}

func joinPlus(terms []string) string {
	out := terms[0]
	for _, t := range terms[1:] {
		out += "+" + t
	}
	return out
}

func baseFieldName(name string) string {
	switch name {
	case "BX":
		return "bx"
	case "BP":
		return "bp"
	case "SI":
		return "si"
	case "DI":
		return "di"
	}
	return name
}

func memSegExpr(m decode.Mem) string {
	return "cpu." + segField[m.Segment]
}

// readExpr renders op as a value expression: a register field, an
// immediate literal, or a memory-read helper call.
func readExpr(op decode.Operand) string {
	switch op.Kind {
	case decode.OperandReg8:
		return "cpu." + reg8Field[op.Reg]
	case decode.OperandReg16:
		return "cpu." + reg16Field[op.Reg]
	case decode.OperandSeg:
		return "cpu." + segField[op.Seg]
	case decode.OperandImm8:
		return fmt.Sprintf("0x%02X", op.Imm8)
	case decode.OperandImm16:
		return fmt.Sprintf("0x%04X", op.Imm16)
	case decode.OperandMem:
		helper := "mem_read8"
		if op.Mem.Width == 2 {
			helper = "mem_read16"
		}
		return fmt.Sprintf("%s(cpu, %s, %s)", helper, memSegExpr(op.Mem), memOffsetExpr(op.Mem))
	case decode.OperandMoffs:
		helper := "mem_read8"
		if op.MoffsWidth == 2 {
			helper = "mem_read16"
		}
		return fmt.Sprintf("%s(cpu, cpu.%s, 0x%04X)", helper, segField[op.MoffsSegment], op.MoffsOffset)
	case decode.OperandFarPtr:
		return fmt.Sprintf("0x%04X /*seg*/, 0x%04X /*off*/", op.Far.Segment, op.Far.Offset)
	}
	return "/* unsupported operand */"
}

// writeStmt renders an assignment of valueExpr into op: a register
// field assignment or a memory-write helper call.
func writeStmt(op decode.Operand, valueExpr string) string {
	switch op.Kind {
	case decode.OperandReg8:
		return fmt.Sprintf("cpu.%s = %s", reg8Field[op.Reg], valueExpr)
	case decode.OperandReg16:
		return fmt.Sprintf("cpu.%s = %s", reg16Field[op.Reg], valueExpr)
	case decode.OperandSeg:
		return fmt.Sprintf("cpu.%s = %s", segField[op.Seg], valueExpr)
	case decode.OperandMem:
		helper := "mem_write8"
		if op.Mem.Width == 2 {
			helper = "mem_write16"
		}
		return fmt.Sprintf("%s(cpu, %s, %s, %s)", helper, memSegExpr(op.Mem), memOffsetExpr(op.Mem), valueExpr)
	case decode.OperandMoffs:
		helper := "mem_write8"
		if op.MoffsWidth == 2 {
			helper = "mem_write16"
		}
		return fmt.Sprintf("%s(cpu, cpu.%s, 0x%04X, %s)", helper, segField[op.MoffsSegment], op.MoffsOffset, valueExpr)
	}
	return "/* unsupported write target */"
}

func fieldOf(op decode.Operand) string {
	switch op.Kind {
	case decode.OperandReg8:
		return reg8Field[op.Reg]
	case decode.OperandReg16:
		return reg16Field[op.Reg]
	}
	return ""
}
