package decode

// Decoder owns a read cursor into a byte slice — typically the whole
// file image, so that instruction offsets are file-absolute — and
// advances it as it produces each instruction.
type Decoder struct {
	Data          []byte
	OverlayVector byte
	pos           int
}

// NewDecoder builds a decoder over data. overlayVector is the software
// interrupt number the overlay manager traps on (conventionally 0x3F).
func NewDecoder(data []byte, overlayVector byte) *Decoder {
	return &Decoder{Data: data, OverlayVector: overlayVector}
}

// Pos reports the current cursor offset.
func (d *Decoder) Pos() int { return d.pos }

// SetPos repositions the cursor.
func (d *Decoder) SetPos(pos int) { d.pos = pos }

// DecodeOne decodes the instruction at the current cursor and advances
// past it. ok is false only once the cursor has reached the end of
// Data; decoding itself never fails (see decodeAt).
func (d *Decoder) DecodeOne() (Instruction, bool) {
	if d.pos >= len(d.Data) {
		return Instruction{}, false
	}
	ins := decodeAt(d.Data, d.pos, d.OverlayVector)
	d.pos = ins.Offset + ins.Length
	return ins, true
}

// DecodeRange repeatedly decodes from start until the cursor reaches
// end (exclusive), returning the produced instructions in order. The
// final instruction may run past end if end falls mid-instruction;
// callers sweeping a region are expected to pick region boundaries at
// instruction boundaries as the analyzer does.
func (d *Decoder) DecodeRange(start, end int) []Instruction {
	d.SetPos(start)
	var out []Instruction
	for d.pos < end {
		ins, ok := d.DecodeOne()
		if !ok {
			break
		}
		out = append(out, ins)
	}
	return out
}

// cur is an internal sticky-failure byte cursor used while decoding a
// single instruction: once a read runs past the end of data, every
// subsequent read returns 0 and ok stays false, so the caller can bail
// out to the raw-byte fallback in one place.
type cur struct {
	data []byte
	pos  int
	ok   bool
}

func newCur(data []byte, pos int) *cur {
	return &cur{data: data, pos: pos, ok: true}
}

func (c *cur) u8() uint8 {
	if !c.ok || c.pos >= len(c.data) {
		c.ok = false
		return 0
	}
	v := c.data[c.pos]
	c.pos++
	return v
}

func (c *cur) peek() (uint8, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}

func (c *cur) u16() uint16 {
	lo := c.u8()
	hi := c.u8()
	return uint16(lo) | uint16(hi)<<8
}

// modrm decodes a ModR/M byte at the cursor, returning the reg field
// and the decoded r/m operand of the given width, honoring a segment
// override when one is in effect (segOverride < 0 means "none").
func (c *cur) modrm(width int, segOverride int) (regField int, rm Operand) {
	b := c.u8()
	if !c.ok {
		return 0, Operand{}
	}
	mod := b >> 6
	regField = int((b >> 3) & 7)
	rmField := int(b & 7)

	if mod == 3 {
		return regField, regOperand(width, rmField)
	}

	comp := eaTable[rmField]
	hasBase, hasIndex := comp.hasBase, comp.hasIndex
	base, index := comp.base, comp.index
	var disp int16

	switch {
	case mod == 0 && rmField == 6:
		hasBase, hasIndex = false, false
		disp = int16(c.u16())
	case mod == 1:
		disp = int16(int8(c.u8()))
	case mod == 2:
		disp = int16(c.u16())
	}

	seg := segOverride
	if seg < 0 {
		if mod == 0 && rmField == 6 {
			seg = SegDS
		} else {
			seg = defaultSegment(comp)
		}
	}

	m := Mem{
		HasBase: hasBase, Base: base,
		HasIndex: hasIndex, Index: index,
		Disp: disp, Segment: seg, Width: width,
	}
	return regField, memOperand(m)
}

// decodeAt decodes exactly one instruction starting at start, always
// succeeding: an unknown opcode or a truncated read falls back to a
// single raw byte, per the total-coverage error policy (spec §7).
func decodeAt(data []byte, start int, overlayVector byte) Instruction {
	c := newCur(data, start)

	segOverride := -1
	rep := RepNone

prefixLoop:
	for {
		b, has := c.peek()
		if !has {
			break
		}
		switch b {
		case 0x26:
			segOverride = SegES
		case 0x2E:
			segOverride = SegCS
		case 0x36:
			segOverride = SegSS
		case 0x3E:
			segOverride = SegDS
		case 0xF2:
			rep = RepNZ
		case 0xF3:
			rep = RepUnconditional
		case 0xF0:
			// bus lock: consumed, carries no semantic weight here
		default:
			break prefixLoop
		}
		c.pos++
	}

	op, has := c.peek()
	if !has {
		return rawByte(data, start)
	}
	c.pos++

	ins := Instruction{Mnemonic: "", Rep: rep, SegOverride: segOverride}
	decodeOpcode(c, op, overlayVector, segOverride, &ins)

	if !c.ok {
		return rawByte(data, start)
	}

	ins.Offset = start
	ins.Length = c.pos - start
	ins.Raw = data[start:c.pos]
	return ins
}

func rawByte(data []byte, start int) Instruction {
	end := start + 1
	if end > len(data) {
		end = len(data)
	}
	return Instruction{
		Offset:   start,
		Length:   end - start,
		Raw:      data[start:end],
		Mnemonic: rawByteMnemonic,
		SegOverride: -1,
	}
}

// resolveRel computes the absolute target of a relative branch: the
// offset of the instruction immediately following (already reflected
// in c.pos at the point of the call, since the relative delta is
// always the final byte(s) read), plus the sign-extended delta,
// modulo 0x10000.
func resolveRel(nextOffset int, delta int) uint16 {
	return uint16((nextOffset + delta) & 0xFFFF)
}

// decodeOpcode dispatches on the primary opcode and fills in ins. It
// never needs to signal failure itself: any truncation surfaces
// through c.ok becoming false, checked once by the caller.
func decodeOpcode(c *cur, op uint8, overlayVector byte, segOverride int, ins *Instruction) {
	switch {
	case op < 0x40:
		decodeALUGroup(c, op, segOverride, ins)
		return
	case op >= 0x40 && op <= 0x47:
		ins.Mnemonic = "INC"
		ins.Op1 = regOperand(2, int(op-0x40))
		return
	case op >= 0x48 && op <= 0x4F:
		ins.Mnemonic = "DEC"
		ins.Op1 = regOperand(2, int(op-0x48))
		return
	case op >= 0x50 && op <= 0x57:
		ins.Mnemonic = "PUSH"
		ins.Op1 = regOperand(2, int(op-0x50))
		return
	case op >= 0x58 && op <= 0x5F:
		ins.Mnemonic = "POP"
		ins.Op1 = regOperand(2, int(op-0x58))
		return
	case op == 0x60:
		ins.Mnemonic = "PUSHA"
		return
	case op == 0x61:
		ins.Mnemonic = "POPA"
		return
	case op == 0x68:
		ins.Mnemonic = "PUSH"
		ins.Op1 = imm16Operand(c.u16())
		return
	case op == 0x6A:
		ins.Mnemonic = "PUSH"
		ins.Op1 = imm8Operand(c.u8())
		return
	case op == 0x69:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "IMUL"
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
		ins.Op3 = imm16Operand(c.u16())
		return
	case op == 0x6B:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "IMUL"
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
		ins.Op3 = imm8Operand(c.u8())
		return
	case op >= 0x70 && op <= 0x7F:
		delta := int(int8(c.u8()))
		ins.Mnemonic = ccMnemonics[op&0x0F]
		ins.Op1 = rel8Operand(resolveRel(c.pos, delta))
		return
	case op == 0x80 || op == 0x82:
		reg, rm := c.modrm(1, segOverride)
		ins.Mnemonic = aluMnemonics[reg]
		ins.Op1 = rm
		ins.Op2 = imm8Operand(c.u8())
		return
	case op == 0x81:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = aluMnemonics[reg]
		ins.Op1 = rm
		ins.Op2 = imm16Operand(c.u16())
		return
	case op == 0x83:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = aluMnemonics[reg]
		ins.Op1 = rm
		// sign-extend-8 subform: Op2 stays an 8-bit immediate even
		// though Op1 is word-width; the lifter sign-extends it.
		ins.Op2 = imm8Operand(c.u8())
		return
	case op == 0x84:
		reg, rm := c.modrm(1, segOverride)
		ins.Mnemonic = "TEST"
		ins.Op1 = rm
		ins.Op2 = regOperand(1, reg)
		return
	case op == 0x85:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "TEST"
		ins.Op1 = rm
		ins.Op2 = regOperand(2, reg)
		return
	case op == 0x86:
		reg, rm := c.modrm(1, segOverride)
		ins.Mnemonic = "XCHG"
		ins.Op1 = rm
		ins.Op2 = regOperand(1, reg)
		return
	case op == 0x87:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "XCHG"
		ins.Op1 = rm
		ins.Op2 = regOperand(2, reg)
		return
	case op == 0x88:
		reg, rm := c.modrm(1, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = rm
		ins.Op2 = regOperand(1, reg)
		return
	case op == 0x89:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = rm
		ins.Op2 = regOperand(2, reg)
		return
	case op == 0x8A:
		reg, rm := c.modrm(1, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = regOperand(1, reg)
		ins.Op2 = rm
		return
	case op == 0x8B:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
		return
	case op == 0x8C:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = rm
		ins.Op2 = segOperand(reg & 3)
		return
	case op == 0x8D:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "LEA"
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
		return
	case op == 0x8E:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = segOperand(reg & 3)
		ins.Op2 = rm
		return
	case op == 0x8F:
		_, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "POP"
		ins.Op1 = rm
		return
	case op == 0x90:
		ins.Mnemonic = "NOP"
		return
	case op >= 0x91 && op <= 0x97:
		ins.Mnemonic = "XCHG"
		ins.Op1 = regOperand(2, RegAX)
		ins.Op2 = regOperand(2, int(op-0x90))
		return
	case op == 0x98:
		ins.Mnemonic = "CBW"
		return
	case op == 0x99:
		ins.Mnemonic = "CWD"
		return
	case op == 0x9A:
		off := c.u16()
		seg := c.u16()
		ins.Mnemonic = "CALLF"
		ins.Op1 = farPtrOperand(seg, off)
		return
	case op == 0x9B:
		ins.Mnemonic = "WAIT"
		return
	case op == 0x9C:
		ins.Mnemonic = "PUSHF"
		return
	case op == 0x9D:
		ins.Mnemonic = "POPF"
		return
	case op == 0x9E:
		ins.Mnemonic = "SAHF"
		return
	case op == 0x9F:
		ins.Mnemonic = "LAHF"
		return
	case op == 0xA0:
		seg := effSeg(segOverride, SegDS)
		ins.Mnemonic = "MOV"
		ins.Op1 = regOperand(1, RegAX)
		ins.Op2 = moffsOperand(c.u16(), seg, 1)
		return
	case op == 0xA1:
		seg := effSeg(segOverride, SegDS)
		ins.Mnemonic = "MOV"
		ins.Op1 = regOperand(2, RegAX)
		ins.Op2 = moffsOperand(c.u16(), seg, 2)
		return
	case op == 0xA2:
		seg := effSeg(segOverride, SegDS)
		ins.Mnemonic = "MOV"
		ins.Op1 = moffsOperand(c.u16(), seg, 1)
		ins.Op2 = regOperand(1, RegAX)
		return
	case op == 0xA3:
		seg := effSeg(segOverride, SegDS)
		ins.Mnemonic = "MOV"
		ins.Op1 = moffsOperand(c.u16(), seg, 2)
		ins.Op2 = regOperand(2, RegAX)
		return
	case op == 0xA4:
		ins.Mnemonic = "MOVSB"
		return
	case op == 0xA5:
		ins.Mnemonic = "MOVSW"
		return
	case op == 0xA6:
		ins.Mnemonic = "CMPSB"
		return
	case op == 0xA7:
		ins.Mnemonic = "CMPSW"
		return
	case op == 0xA8:
		ins.Mnemonic = "TEST"
		ins.Op1 = regOperand(1, RegAX)
		ins.Op2 = imm8Operand(c.u8())
		return
	case op == 0xA9:
		ins.Mnemonic = "TEST"
		ins.Op1 = regOperand(2, RegAX)
		ins.Op2 = imm16Operand(c.u16())
		return
	case op == 0xAA:
		ins.Mnemonic = "STOSB"
		return
	case op == 0xAB:
		ins.Mnemonic = "STOSW"
		return
	case op == 0xAC:
		ins.Mnemonic = "LODSB"
		return
	case op == 0xAD:
		ins.Mnemonic = "LODSW"
		return
	case op == 0xAE:
		ins.Mnemonic = "SCASB"
		return
	case op == 0xAF:
		ins.Mnemonic = "SCASW"
		return
	case op >= 0xB0 && op <= 0xB7:
		ins.Mnemonic = "MOV"
		ins.Op1 = regOperand(1, int(op-0xB0))
		ins.Op2 = imm8Operand(c.u8())
		return
	case op >= 0xB8 && op <= 0xBF:
		ins.Mnemonic = "MOV"
		ins.Op1 = regOperand(2, int(op-0xB8))
		ins.Op2 = imm16Operand(c.u16())
		return
	case op == 0xC0:
		decodeShift(c, 1, segOverride, shiftByImm8, ins)
		return
	case op == 0xC1:
		decodeShift(c, 2, segOverride, shiftByImm8, ins)
		return
	case op == 0xC2:
		ins.Mnemonic = "RET"
		ins.Op1 = imm16Operand(c.u16())
		return
	case op == 0xC3:
		ins.Mnemonic = "RET"
		return
	case op == 0xC4:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "LES"
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
		return
	case op == 0xC5:
		reg, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "LDS"
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
		return
	case op == 0xC6:
		_, rm := c.modrm(1, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = rm
		ins.Op2 = imm8Operand(c.u8())
		return
	case op == 0xC7:
		_, rm := c.modrm(2, segOverride)
		ins.Mnemonic = "MOV"
		ins.Op1 = rm
		ins.Op2 = imm16Operand(c.u16())
		return
	case op == 0xC8:
		size := c.u16()
		level := c.u8()
		ins.Mnemonic = "ENTER"
		ins.Op1 = imm16Operand(size)
		ins.Op2 = imm8Operand(level)
		return
	case op == 0xC9:
		ins.Mnemonic = "LEAVE"
		return
	case op == 0xCA:
		ins.Mnemonic = "RETF"
		ins.Op1 = imm16Operand(c.u16())
		return
	case op == 0xCB:
		ins.Mnemonic = "RETF"
		return
	case op == 0xCC:
		ins.Mnemonic = "INT"
		ins.Op1 = imm8Operand(3)
		return
	case op == 0xCD:
		vector := c.u8()
		ins.Mnemonic = "INT"
		ins.Op1 = imm8Operand(vector)
		if vector == overlayVector {
			module := c.u8()
			off := c.u16()
			ins.Overlay = OverlayTrap{IsOverlay: true, Module: int(module), Offset: off}
		}
		return
	case op == 0xCE:
		ins.Mnemonic = "INTO"
		return
	case op == 0xCF:
		ins.Mnemonic = "IRET"
		return
	case op == 0xD0:
		decodeShift(c, 1, segOverride, shiftBy1, ins)
		return
	case op == 0xD1:
		decodeShift(c, 2, segOverride, shiftBy1, ins)
		return
	case op == 0xD2:
		decodeShift(c, 1, segOverride, shiftByCL, ins)
		return
	case op == 0xD3:
		decodeShift(c, 2, segOverride, shiftByCL, ins)
		return
	case op == 0xD4:
		c.u8() // conventionally 0x0A; base is implicitly decimal
		ins.Mnemonic = "AAM"
		return
	case op == 0xD5:
		c.u8()
		ins.Mnemonic = "AAD"
		return
	case op == 0xE0:
		delta := int(int8(c.u8()))
		ins.Mnemonic = "LOOPNZ"
		ins.Op1 = rel8Operand(resolveRel(c.pos, delta))
		return
	case op == 0xE1:
		delta := int(int8(c.u8()))
		ins.Mnemonic = "LOOPZ"
		ins.Op1 = rel8Operand(resolveRel(c.pos, delta))
		return
	case op == 0xE2:
		delta := int(int8(c.u8()))
		ins.Mnemonic = "LOOP"
		ins.Op1 = rel8Operand(resolveRel(c.pos, delta))
		return
	case op == 0xE3:
		delta := int(int8(c.u8()))
		ins.Mnemonic = "JCXZ"
		ins.Op1 = rel8Operand(resolveRel(c.pos, delta))
		return
	case op == 0xE4:
		ins.Mnemonic = "IN"
		ins.Op1 = regOperand(1, RegAX)
		ins.Op2 = imm8Operand(c.u8())
		return
	case op == 0xE5:
		ins.Mnemonic = "IN"
		ins.Op1 = regOperand(2, RegAX)
		ins.Op2 = imm8Operand(c.u8())
		return
	case op == 0xE6:
		ins.Mnemonic = "OUT"
		ins.Op1 = imm8Operand(c.u8())
		ins.Op2 = regOperand(1, RegAX)
		return
	case op == 0xE7:
		ins.Mnemonic = "OUT"
		ins.Op1 = imm8Operand(c.u8())
		ins.Op2 = regOperand(2, RegAX)
		return
	case op == 0xE8:
		delta := int(int16(c.u16()))
		ins.Mnemonic = "CALL"
		ins.Op1 = rel16Operand(resolveRel(c.pos, delta))
		return
	case op == 0xE9:
		delta := int(int16(c.u16()))
		ins.Mnemonic = "JMP"
		ins.Op1 = rel16Operand(resolveRel(c.pos, delta))
		return
	case op == 0xEA:
		off := c.u16()
		seg := c.u16()
		ins.Mnemonic = "JMPF"
		ins.Op1 = farPtrOperand(seg, off)
		return
	case op == 0xEB:
		delta := int(int8(c.u8()))
		ins.Mnemonic = "JMP"
		ins.Op1 = rel8Operand(resolveRel(c.pos, delta))
		return
	case op == 0xEC:
		ins.Mnemonic = "IN"
		ins.Op1 = regOperand(1, RegAX)
		ins.Op2 = regOperand(2, RegDX)
		return
	case op == 0xED:
		ins.Mnemonic = "IN"
		ins.Op1 = regOperand(2, RegAX)
		ins.Op2 = regOperand(2, RegDX)
		return
	case op == 0xEE:
		ins.Mnemonic = "OUT"
		ins.Op1 = regOperand(2, RegDX)
		ins.Op2 = regOperand(1, RegAX)
		return
	case op == 0xEF:
		ins.Mnemonic = "OUT"
		ins.Op1 = regOperand(2, RegDX)
		ins.Op2 = regOperand(2, RegAX)
		return
	case op == 0xF4:
		ins.Mnemonic = "HLT"
		return
	case op == 0xF5:
		ins.Mnemonic = "CMC"
		return
	case op == 0xF6:
		decodeGroup3(c, 1, segOverride, ins)
		return
	case op == 0xF7:
		decodeGroup3(c, 2, segOverride, ins)
		return
	case op == 0xF8:
		ins.Mnemonic = "CLC"
		return
	case op == 0xF9:
		ins.Mnemonic = "STC"
		return
	case op == 0xFA:
		ins.Mnemonic = "CLI"
		return
	case op == 0xFB:
		ins.Mnemonic = "STI"
		return
	case op == 0xFC:
		ins.Mnemonic = "CLD"
		return
	case op == 0xFD:
		ins.Mnemonic = "STD"
		return
	case op == 0xFE:
		decodeGroup45(c, 1, segOverride, ins)
		return
	case op == 0xFF:
		decodeGroup45(c, 2, segOverride, ins)
		return
	default:
		c.ok = false
		return
	}
}

func effSeg(override int, def int) int {
	if override >= 0 {
		return override
	}
	return def
}

// decodeALUGroup handles the eight arithmetic/logic operations across
// their six encoding forms, plus the segment-register push/pop
// opcodes that share their opcode byte's high bits.
func decodeALUGroup(c *cur, op uint8, segOverride int, ins *Instruction) {
	group := int(op >> 3)
	sub := int(op & 7)

	// Groups 0-3 (ADD,OR,ADC,SBB) interleave segment push/pop at their
	// sub=6/7 slots (0x06/0x07, 0x0E/0x0F, 0x16/0x17, 0x1E/0x1F).
	// Groups 4-7 (AND,SUB,XOR,CMP) instead interleave a segment-override
	// prefix at sub=6 (already consumed by the prefix loop, so
	// unreachable here) and a BCD adjust at sub=7.
	if group <= 3 && (sub == 6 || sub == 7) {
		segIdx := []int{SegES, SegCS, SegSS, SegDS}[group]
		if sub == 6 {
			ins.Mnemonic = "PUSH"
		} else {
			ins.Mnemonic = "POP"
		}
		ins.Op1 = segOperand(segIdx)
		return
	}
	if group > 3 && sub == 7 {
		ins.Mnemonic = bcdMnemonics[group-4]
		return
	}
	if group > 3 && sub == 6 {
		// 0x26/0x2E/0x36/0x3E: segment-override prefixes, never
		// reached here since the prefix loop already consumed them.
		c.ok = false
		return
	}

	mnemonic := aluMnemonics[group]
	ins.Mnemonic = mnemonic
	switch sub {
	case 0:
		reg, rm := c.modrm(1, segOverride)
		ins.Op1 = rm
		ins.Op2 = regOperand(1, reg)
	case 1:
		reg, rm := c.modrm(2, segOverride)
		ins.Op1 = rm
		ins.Op2 = regOperand(2, reg)
	case 2:
		reg, rm := c.modrm(1, segOverride)
		ins.Op1 = regOperand(1, reg)
		ins.Op2 = rm
	case 3:
		reg, rm := c.modrm(2, segOverride)
		ins.Op1 = regOperand(2, reg)
		ins.Op2 = rm
	case 4:
		ins.Op1 = regOperand(1, RegAX)
		ins.Op2 = imm8Operand(c.u8())
	case 5:
		ins.Op1 = regOperand(2, RegAX)
		ins.Op2 = imm16Operand(c.u16())
	}
}

type shiftForm int

const (
	shiftBy1 shiftForm = iota
	shiftByCL
	shiftByImm8
)

// decodeShift handles the shift/rotate group (ROL/ROR/RCL/RCR/SHL/SHR/
// SAL/SAR) in its three amount forms. The amount is represented as
// either the CL register operand or an 8-bit immediate (value 1 for
// the "by 1" form), letting the lifter treat all three uniformly.
func decodeShift(c *cur, width int, segOverride int, form shiftForm, ins *Instruction) {
	reg, rm := c.modrm(width, segOverride)
	ins.Mnemonic = shiftMnemonics[reg]
	ins.Op1 = rm
	switch form {
	case shiftBy1:
		ins.Op2 = imm8Operand(1)
	case shiftByCL:
		ins.Op2 = regOperand(1, RegCX)
	case shiftByImm8:
		ins.Op2 = imm8Operand(c.u8())
	}
}

// decodeGroup3 handles TEST/NOT/NEG/MUL/IMUL/DIV/IDIV, selected by the
// ModR/M reg field. Only the TEST subform consumes a trailing
// immediate of the instruction's operand width.
func decodeGroup3(c *cur, width int, segOverride int, ins *Instruction) {
	reg, rm := c.modrm(width, segOverride)
	ins.Mnemonic = group3Mnemonics[reg]
	ins.Op1 = rm
	if reg == 0 || reg == 1 {
		if width == 1 {
			ins.Op2 = imm8Operand(c.u8())
		} else {
			ins.Op2 = imm16Operand(c.u16())
		}
	}
}

// decodeGroup45 handles INC/DEC/CALL/CALLF/JMP/JMPF/PUSH on an r/m
// operand, selected by the ModR/M reg field. Opcode 0xFE (width=1)
// only defines reg 0/1 (INC/DEC); opcode 0xFF (width=2) defines reg
// 0-6 but leaves reg=7 undefined. Either case falls back to the
// raw-byte pseudo-instruction rather than guessing a mnemonic.
func decodeGroup45(c *cur, width int, segOverride int, ins *Instruction) {
	reg, rm := c.modrm(width, segOverride)
	if width == 1 {
		switch reg {
		case 0:
			ins.Mnemonic = "INC"
		case 1:
			ins.Mnemonic = "DEC"
		default:
			c.ok = false
			return
		}
		ins.Op1 = rm
		return
	}
	if reg == 7 {
		c.ok = false
		return
	}
	ins.Mnemonic = group45Mnemonics[reg]
	ins.Op1 = rm
}
