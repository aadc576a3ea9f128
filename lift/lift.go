package lift

import (
	"fmt"
	"strings"

	"github.com/civrecomp/dos16recomp/decode"
)

// FunctionInfo is the minimal shape of an analyzed function the lifter
// needs: its name and byte range.
type FunctionInfo struct {
	Name  string
	Start int
	End   int
}

// Lift translates one function's instruction stream into a named
// target routine `name(cpu)`, per the two-pass scheme: pass 1 collects
// intra-function branch targets, pass 2 emits the body with labels
// inserted only where referenced.
func Lift(fn FunctionInfo, data []byte, overlayVector byte) string {
	d := decode.NewDecoder(data, overlayVector)
	insns := d.DecodeRange(fn.Start, fn.End)

	labels := collectLabels(insns, fn)

	var b strings.Builder
	fmt.Fprintf(&b, "func %s(cpu *CPU) {\n", fn.Name)
	for _, ins := range insns {
		if labels[uint16(ins.Offset)] {
			fmt.Fprintf(&b, "L_%04X:\n", ins.Offset)
		}
		fmt.Fprintf(&b, "\t// %04X: %s\n", ins.Offset, disasm(ins))
		emit(&b, ins, "\t")
	}
	b.WriteString("}\n")
	return b.String()
}

// collectLabels is pass 1: the set of intra-function offsets targeted
// by a conditional or unconditional short/near jump, or a loop form.
func collectLabels(insns []decode.Instruction, fn FunctionInfo) map[uint16]bool {
	labels := map[uint16]bool{}
	for _, ins := range insns {
		var target uint16
		switch ins.Mnemonic {
		case "JMP", "LOOP", "LOOPZ", "LOOPNZ", "JCXZ":
			if ins.Op1.Kind == decode.OperandRel8 || ins.Op1.Kind == decode.OperandRel16 {
				target = ins.Op1.RelTarget
			} else {
				continue
			}
		default:
			if !isConditionalJump(ins.Mnemonic) {
				continue
			}
			target = ins.Op1.RelTarget
		}
		if int(target) >= fn.Start && int(target) < fn.End {
			labels[target] = true
		}
	}
	return labels
}

func disasm(ins decode.Instruction) string {
	parts := []string{ins.Mnemonic}
	if ins.Op1.Kind != decode.OperandNone {
		parts = append(parts, operandText(ins.Op1))
	}
	if ins.Op2.Kind != decode.OperandNone {
		parts = append(parts, operandText(ins.Op2))
	}
	return strings.Join(parts, " ")
}

func operandText(op decode.Operand) string {
	switch op.Kind {
	case decode.OperandRel8, decode.OperandRel16:
		return fmt.Sprintf("0x%04X", op.RelTarget)
	case decode.OperandFarPtr:
		return fmt.Sprintf("%04X:%04X", op.Far.Segment, op.Far.Offset)
	default:
		return readExpr(op)
	}
}

func emitf(b *strings.Builder, indent, format string, args ...interface{}) {
	fmt.Fprintf(b, indent+format+"\n", args...)
}

// emit writes the target statement(s) for one instruction. Unhandled
// mnemonics fall through to a commented UNHANDLED marker so the
// surrounding structure survives, per the total lifting policy.
func emit(b *strings.Builder, ins decode.Instruction, indent string) {
	switch ins.Mnemonic {
	case "ADD", "ADC", "SUB", "SBB", "AND", "OR", "XOR", "CMP", "TEST":
		emitALU(b, ins, indent)
	case "ROL", "ROR", "RCL", "RCR":
		emitf(b, indent, "// TODO: rotate not yet lifted (%s)", disasm(ins))
	case "SHL", "SHR", "SAL", "SAR":
		emitShift(b, ins, indent)
	case "NOT":
		emitf(b, indent, "%s", writeStmt(ins.Op1, "^("+readExpr(ins.Op1)+")"))
	case "NEG":
		w := width(ins.Op1)
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_sub%d(cpu, 0, %s)", w*8, readExpr(ins.Op1))))
	case "MUL", "IMUL", "DIV", "IDIV":
		emitMulDiv(b, ins, indent)
	case "INC":
		emitIncDec(b, ins, indent, "add")
	case "DEC":
		emitIncDec(b, ins, indent, "sub")
	case "PUSH":
		emitf(b, indent, "push16(cpu, %s)", readExpr(ins.Op1))
	case "POP":
		emitf(b, indent, "%s", writeStmt(ins.Op1, "pop16(cpu)"))
	case "PUSHA", "POPA":
		emitf(b, indent, "// TODO: %s has no runtime-contract helper", ins.Mnemonic)
	case "PUSHF":
		emitf(b, indent, "push16(cpu, cpu.flags)")
	case "POPF":
		emitf(b, indent, "cpu.flags = pop16(cpu)")
	case "SAHF":
		emitf(b, indent, "cpu.flags = (cpu.flags &^ 0xFF) | uint16(cpu.ah)")
	case "LAHF":
		emitf(b, indent, "cpu.ah = byte(cpu.flags & 0xFF)")
	case "MOV":
		emitf(b, indent, "%s", writeStmt(ins.Op1, readExpr(ins.Op2)))
	case "LEA":
		emitf(b, indent, "%s", writeStmt(ins.Op1, memOffsetExpr(ins.Op2.Mem)))
	case "LES":
		emitLxS(b, ins, indent, "es")
	case "LDS":
		emitLxS(b, ins, indent, "ds")
	case "XCHG":
		emitf(b, indent, "tmp := %s", readExpr(ins.Op1))
		emitf(b, indent, "%s", writeStmt(ins.Op1, readExpr(ins.Op2)))
		emitf(b, indent, "%s", writeStmt(ins.Op2, "tmp"))
	case "CBW":
		emitf(b, indent, "if cpu.al&0x80 != 0 { cpu.ah = 0xFF } else { cpu.ah = 0 }")
	case "CWD":
		emitf(b, indent, "if cpu.ax&0x8000 != 0 { cpu.dx = 0xFFFF } else { cpu.dx = 0 }")
	case "NOP":
		emitf(b, indent, "// nop")
	case "CLC":
		emitf(b, indent, "cpu.flags &^= FlagCF")
	case "STC":
		emitf(b, indent, "cpu.flags |= FlagCF")
	case "CMC":
		emitf(b, indent, "cpu.flags ^= FlagCF")
	case "CLD":
		emitf(b, indent, "cpu.flags &^= FlagDF")
	case "STD":
		emitf(b, indent, "cpu.flags |= FlagDF")
	case "CLI":
		emitf(b, indent, "cpu.flags &^= FlagIF")
	case "STI":
		emitf(b, indent, "cpu.flags |= FlagIF")
	case "HLT":
		emitf(b, indent, "cpu.halted = true")
	case "IN", "OUT":
		emitf(b, indent, "// TODO: port I/O not lifted (%s)", disasm(ins))
	case "WAIT":
		emitf(b, indent, "// TODO: FPU escape not lifted")
	case "AAM", "AAD", "DAA", "DAS", "AAA", "AAS":
		emitf(b, indent, "// TODO: BCD helper not lifted (%s)", ins.Mnemonic)
	case "ENTER":
		emitf(b, indent, "push16(cpu, cpu.bp)")
		emitf(b, indent, "cpu.bp = cpu.sp")
		emitf(b, indent, "cpu.sp -= %s", readExpr(ins.Op1))
	case "LEAVE":
		emitf(b, indent, "cpu.sp = cpu.bp")
		emitf(b, indent, "cpu.bp = pop16(cpu)")
	case "RET":
		if ins.Op1.Kind != decode.OperandNone {
			emitf(b, indent, "cpu.sp += %s", readExpr(ins.Op1))
		}
		emitf(b, indent, "return")
	case "RETF":
		if ins.Op1.Kind != decode.OperandNone {
			emitf(b, indent, "cpu.sp += %s", readExpr(ins.Op1))
		}
		emitf(b, indent, "// far return")
		emitf(b, indent, "return")
	case "IRET":
		emitf(b, indent, "cpu.flags = pop16(cpu)")
		emitf(b, indent, "return")
	case "CALL":
		emitCall(b, ins, indent)
	case "CALLF":
		emitCallF(b, ins, indent)
	case "JMP":
		emitJmp(b, ins, indent)
	case "JMPF":
		if ins.Op1.Kind != decode.OperandFarPtr {
			emitf(b, indent, "// TODO: indirect far jump target not resolved (%s)", disasm(ins))
			return
		}
		emitf(b, indent, "far_%04X_%04X(cpu)", ins.Op1.Far.Segment, ins.Op1.Far.Offset)
		emitf(b, indent, "return")
	case "INT":
		emitInt(b, ins, indent)
	case "INTO":
		emitf(b, indent, "// TODO: INTO not lifted")
	case "LOOP":
		emitLoop(b, ins, indent, "cpu.cx != 0")
	case "LOOPZ":
		emitLoop(b, ins, indent, "cpu.cx != 0 && zf(cpu)")
	case "LOOPNZ":
		emitLoop(b, ins, indent, "cpu.cx != 0 && !zf(cpu)")
	case "JCXZ":
		emitf(b, indent, "if cpu.cx == 0 {")
		emitf(b, indent+"\t", "goto L_%04X", ins.Op1.RelTarget)
		emitf(b, indent, "}")
	case "MOVSB", "MOVSW", "CMPSB", "CMPSW", "STOSB", "STOSW", "LODSB", "LODSW", "SCASB", "SCASW":
		emitStringPrim(b, ins, indent)
	default:
		if isConditionalJump(ins.Mnemonic) {
			emitCondJump(b, ins, indent)
			return
		}
		if ins.IsRawByte() {
			emitf(b, indent, "// raw byte 0x%02X (unknown opcode)", ins.Raw[0])
			return
		}
		emitf(b, indent, "// UNHANDLED: %s", disasm(ins))
	}
}

func emitALU(b *strings.Builder, ins decode.Instruction, indent string) {
	w := width(ins.Op1)
	dst := readExpr(ins.Op1)
	src := readExpr(ins.Op2)
	if w == 2 && ins.Op2.Kind == decode.OperandImm8 {
		// 0x83 sign-extend-8 subform: widen the immediate to 16 bits.
		src = fmt.Sprintf("0x%04X", uint16(int16(int8(ins.Op2.Imm8))))
	}
	switch ins.Mnemonic {
	case "ADD":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_add%d(cpu, %s, %s)", w*8, dst, src)))
	case "ADC":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_add%d(cpu, %s, %s+cf(cpu))", w*8, dst, src)))
	case "SUB":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_sub%d(cpu, %s, %s)", w*8, dst, src)))
	case "SBB":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_sub%d(cpu, %s, %s+cf(cpu))", w*8, dst, src)))
	case "CMP":
		emitf(b, indent, "flags_cmp%d(cpu, %s, %s)", w*8, dst, src)
	case "AND":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_logic%d(cpu, %s&%s)", w*8, dst, src)))
	case "OR":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_logic%d(cpu, %s|%s)", w*8, dst, src)))
	case "XOR":
		emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_logic%d(cpu, %s^%s)", w*8, dst, src)))
	case "TEST":
		emitf(b, indent, "flags_logic%d(cpu, %s&%s)", w*8, dst, src)
	}
}

func emitShift(b *strings.Builder, ins decode.Instruction, indent string) {
	w := width(ins.Op1)
	kind := strings.ToLower(ins.Mnemonic)
	if kind == "sal" {
		kind = "shl"
	}
	emitf(b, indent, "pre := %s", readExpr(ins.Op1))
	emitf(b, indent, "result := flags_shift%d(cpu, pre, %s, %q)", w*8, readExpr(ins.Op2), kind)
	emitf(b, indent, "%s", writeStmt(ins.Op1, "result"))
}

func emitIncDec(b *strings.Builder, ins decode.Instruction, indent string, family string) {
	w := width(ins.Op1)
	emitf(b, indent, "savedCF := cpu.flags & FlagCF")
	emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("flags_%s%d(cpu, %s, 1)", family, w*8, readExpr(ins.Op1))))
	emitf(b, indent, "cpu.flags = (cpu.flags &^ FlagCF) | savedCF")
}

func emitMulDiv(b *strings.Builder, ins decode.Instruction, indent string) {
	w := width(ins.Op1)
	src := readExpr(ins.Op1)
	switch ins.Mnemonic {
	case "MUL":
		if w == 1 {
			emitf(b, indent, "wide := uint16(cpu.al) * uint16(%s)", src)
			emitf(b, indent, "cpu.ax = wide")
			emitf(b, indent, "if wide > 0xFF { cpu.flags |= FlagCF | FlagOF } else { cpu.flags &^= FlagCF | FlagOF }")
		} else {
			emitf(b, indent, "wide := uint32(cpu.ax) * uint32(%s)", src)
			emitf(b, indent, "cpu.dx, cpu.ax = uint16(wide>>16), uint16(wide)")
			emitf(b, indent, "if cpu.dx != 0 { cpu.flags |= FlagCF | FlagOF } else { cpu.flags &^= FlagCF | FlagOF }")
		}
	case "IMUL":
		if w == 1 {
			emitf(b, indent, "wide := int16(int8(cpu.al)) * int16(int8(%s))", src)
			emitf(b, indent, "cpu.ax = uint16(wide)")
			emitf(b, indent, "if wide != int16(int8(wide)) { cpu.flags |= FlagCF | FlagOF } else { cpu.flags &^= FlagCF | FlagOF }")
		} else {
			emitf(b, indent, "wide := int32(int16(cpu.ax)) * int32(int16(%s))", src)
			emitf(b, indent, "cpu.dx, cpu.ax = uint16(uint32(wide)>>16), uint16(wide)")
			emitf(b, indent, "if wide != int32(int16(wide)) { cpu.flags |= FlagCF | FlagOF } else { cpu.flags &^= FlagCF | FlagOF }")
		}
	case "DIV":
		if w == 1 {
			emitf(b, indent, "q := cpu.ax / uint16(%s)", src)
			emitf(b, indent, "r := cpu.ax %% uint16(%s)", src)
			emitf(b, indent, "cpu.al, cpu.ah = byte(q), byte(r)")
		} else {
			emitf(b, indent, "dividend := uint32(cpu.dx)<<16 | uint32(cpu.ax)")
			emitf(b, indent, "cpu.ax = uint16(dividend / uint32(%s))", src)
			emitf(b, indent, "cpu.dx = uint16(dividend %% uint32(%s))", src)
		}
	case "IDIV":
		if w == 1 {
			emitf(b, indent, "q := int16(cpu.ax) / int16(int8(%s))", src)
			emitf(b, indent, "r := int16(cpu.ax) %% int16(int8(%s))", src)
			emitf(b, indent, "cpu.al, cpu.ah = byte(q), byte(r)")
		} else {
			emitf(b, indent, "dividend := int32(uint32(cpu.dx)<<16 | uint32(cpu.ax))")
			emitf(b, indent, "cpu.ax = uint16(dividend / int32(int16(%s)))", src)
			emitf(b, indent, "cpu.dx = uint16(dividend %% int32(int16(%s)))", src)
		}
	}
}

func emitLxS(b *strings.Builder, ins decode.Instruction, indent string, segField string) {
	m := ins.Op2.Mem
	emitf(b, indent, "%s", writeStmt(ins.Op1, fmt.Sprintf("mem_read16(cpu, %s, %s)", memSegExpr(m), memOffsetExpr(m))))
	emitf(b, indent, "cpu.%s = mem_read16(cpu, %s, %s+2)", segField, memSegExpr(m), memOffsetExpr(m))
}

func emitCall(b *strings.Builder, ins decode.Instruction, indent string) {
	if ins.Op1.Kind != decode.OperandRel16 {
		emitf(b, indent, "// TODO: indirect call target not resolved (%s)", disasm(ins))
		return
	}
	emitf(b, indent, "res_%06X(cpu)", ins.Op1.RelTarget)
}

func emitCallF(b *strings.Builder, ins decode.Instruction, indent string) {
	if ins.Op1.Kind != decode.OperandFarPtr {
		emitf(b, indent, "// TODO: indirect far call target not resolved (%s)", disasm(ins))
		return
	}
	emitf(b, indent, "far_%04X_%04X(cpu)", ins.Op1.Far.Segment, ins.Op1.Far.Offset)
}

func emitJmp(b *strings.Builder, ins decode.Instruction, indent string) {
	if ins.Op1.Kind != decode.OperandRel8 && ins.Op1.Kind != decode.OperandRel16 {
		emitf(b, indent, "// TODO: indirect jump target not resolved (%s)", disasm(ins))
		return
	}
	emitf(b, indent, "goto L_%04X", ins.Op1.RelTarget)
}

func emitCondJump(b *strings.Builder, ins decode.Instruction, indent string) {
	pred := ccPredicate[ins.Mnemonic]
	emitf(b, indent, "if %s(cpu) {", pred)
	emitf(b, indent+"\t", "goto L_%04X", ins.Op1.RelTarget)
	emitf(b, indent, "}")
}

func emitLoop(b *strings.Builder, ins decode.Instruction, indent string, cond string) {
	emitf(b, indent, "cpu.cx--")
	emitf(b, indent, "if %s {", cond)
	emitf(b, indent+"\t", "goto L_%04X", ins.Op1.RelTarget)
	emitf(b, indent, "}")
}

// namedServiceStub returns the service stub for a DOS/BIOS vector that
// has one, or "" otherwise; emitInt uses it.
func namedServiceStub(vector uint8) string {
	switch vector {
	case 0x10:
		return "bios_int10"
	case 0x16:
		return "bios_int16"
	case 0x21:
		return "dos_int21"
	case 0x33:
		return "mouse_int33"
	default:
		return ""
	}
}

func emitInt(b *strings.Builder, ins decode.Instruction, indent string) {
	if ins.Overlay.IsOverlay {
		emitf(b, indent, "ovl%02d_%04X(cpu)", ins.Overlay.Module, ins.Overlay.Offset)
		return
	}
	vector := ins.Op1.Imm8
	if stub := namedServiceStub(vector); stub != "" {
		emitf(b, indent, "%s(cpu)", stub)
		return
	}
	emitf(b, indent, "int_handler(cpu, 0x%02X)", vector)
}

func emitStringPrim(b *strings.Builder, ins decode.Instruction, indent string) {
	w := 1
	if strings.HasSuffix(ins.Mnemonic, "W") {
		w = 2
	}
	body := func(indent string) {
		stringPrimBody(b, ins.Mnemonic, w, indent)
	}
	if ins.Rep == RepNoneLift {
		body(indent)
		return
	}
	emitf(b, indent, "for cpu.cx != 0 {")
	inner := indent + "\t"
	emitf(b, inner, "cpu.cx--")
	body(inner)
	if ins.Mnemonic == "CMPSB" || ins.Mnemonic == "CMPSW" || ins.Mnemonic == "SCASB" || ins.Mnemonic == "SCASW" {
		if ins.Rep == RepUnconditionalLift {
			emitf(b, inner, "if !zf(cpu) { break }")
		} else {
			emitf(b, inner, "if zf(cpu) { break }")
		}
	}
	emitf(b, indent, "}")
}

func stringPrimBody(b *strings.Builder, mnemonic string, w int, indent string) {
	helperR := fmt.Sprintf("mem_read%d", w*8)
	helperW := fmt.Sprintf("mem_write%d", w*8)
	step := 1
	if w == 2 {
		step = 2
	}
	emitf(b, indent, "step := int16(%d)", step)
	emitf(b, indent, "if df(cpu) { step = -%d }", step)

	switch mnemonic {
	case "MOVSB", "MOVSW":
		emitf(b, indent, "%s(cpu, cpu.es, cpu.di, %s(cpu, cpu.ds, cpu.si))", helperW, helperR)
		emitf(b, indent, "cpu.si += uint16(step)")
		emitf(b, indent, "cpu.di += uint16(step)")
	case "CMPSB", "CMPSW":
		emitf(b, indent, "flags_cmp%d(cpu, %s(cpu, cpu.ds, cpu.si), %s(cpu, cpu.es, cpu.di))", w*8, helperR, helperR)
		emitf(b, indent, "cpu.si += uint16(step)")
		emitf(b, indent, "cpu.di += uint16(step)")
	case "STOSB":
		emitf(b, indent, "mem_write8(cpu, cpu.es, cpu.di, cpu.al)")
		emitf(b, indent, "cpu.di += uint16(step)")
	case "STOSW":
		emitf(b, indent, "mem_write16(cpu, cpu.es, cpu.di, cpu.ax)")
		emitf(b, indent, "cpu.di += uint16(step)")
	case "LODSB":
		emitf(b, indent, "cpu.al = mem_read8(cpu, cpu.ds, cpu.si)")
		emitf(b, indent, "cpu.si += uint16(step)")
	case "LODSW":
		emitf(b, indent, "cpu.ax = mem_read16(cpu, cpu.ds, cpu.si)")
		emitf(b, indent, "cpu.si += uint16(step)")
	case "SCASB":
		emitf(b, indent, "flags_cmp8(cpu, cpu.al, mem_read8(cpu, cpu.es, cpu.di))")
		emitf(b, indent, "cpu.di += uint16(step)")
	case "SCASW":
		emitf(b, indent, "flags_cmp16(cpu, cpu.ax, mem_read16(cpu, cpu.es, cpu.di))")
		emitf(b, indent, "cpu.di += uint16(step)")
	}
}

// RepNoneLift, RepUnconditionalLift mirror decode.RepPrefix values to
// keep this file's switch self-contained and readable.
const (
	RepNoneLift          = decode.RepNone
	RepUnconditionalLift = decode.RepUnconditional
)
