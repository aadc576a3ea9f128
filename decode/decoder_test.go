package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthLawsAndRangeSum(t *testing.T) {
	// push bp; mov bp,sp; sub sp,0x10; mov ax,[bp-4]; pop bp; ret
	data := []byte{
		0x55,             // push bp
		0x8B, 0xEC,       // mov bp,sp
		0x83, 0xEC, 0x10, // sub sp,0x10
		0x8B, 0x46, 0xFC, // mov ax,[bp-4]
		0x5D,             // pop bp
		0xC3,             // ret
	}
	d := NewDecoder(data, 0x3F)
	insns := d.DecodeRange(0, len(data))

	total := 0
	for _, ins := range insns {
		require.Equal(t, len(ins.Raw), ins.Length, "instruction at %#x", ins.Offset)
		total += ins.Length
	}
	assert.Equal(t, len(data), total, "lengths should sum to the swept range")
	assert.Len(t, insns, 6)
}

func TestResweepPrefixEqual(t *testing.T) {
	data := []byte{0x55, 0x8B, 0xEC, 0x5D, 0xC3}
	d1 := NewDecoder(data, 0x3F)
	first := d1.DecodeRange(0, len(data))

	// Re-sweep starting at the second instruction's offset.
	secondStart := first[1].Offset
	d2 := NewDecoder(data, 0x3F)
	resweep := d2.DecodeRange(secondStart, len(data))

	require.Len(t, resweep, len(first)-1)
	for i, ins := range resweep {
		want := first[i+1]
		assert.Equal(t, want.Mnemonic, ins.Mnemonic, "resweep[%d]", i)
		assert.Equal(t, want.Offset, ins.Offset, "resweep[%d]", i)
	}
}

func TestUnknownOpcodeProducesRawByte(t *testing.T) {
	data := []byte{0xF1} // reserved/undefined
	d := NewDecoder(data, 0x3F)
	ins, ok := d.DecodeOne()
	require.True(t, ok, "expected an instruction")
	assert.True(t, ins.IsRawByte(), "mnemonic = %q, want raw-byte fallback", ins.Mnemonic)
	assert.Equal(t, 1, ins.Length)
}

func TestTruncatedReadProducesRawByte(t *testing.T) {
	data := []byte{0x81} // group 1 opcode with no ModR/M byte following
	d := NewDecoder(data, 0x3F)
	ins, ok := d.DecodeOne()
	require.True(t, ok, "expected an instruction")
	assert.True(t, ins.IsRawByte())
	assert.Equal(t, 1, ins.Length)
}

func TestAddressingModRM6NoBaseNoIndex(t *testing.T) {
	// mov ax,[0x1234] : 8B 06 34 12
	data := []byte{0x8B, 0x06, 0x34, 0x12}
	ins := decodeAt(data, 0, 0x3F)
	require.Equal(t, OperandMem, ins.Op2.Kind)
	m := ins.Op2.Mem
	assert.False(t, m.HasBase, "mod=0,rm=6 must have no base")
	assert.False(t, m.HasIndex, "mod=0,rm=6 must have no index")
	assert.Equal(t, SegDS, m.Segment)
}

func TestAddressingMod1RM2BaseBPIndexSI(t *testing.T) {
	// mov ax,[bp+si+5] : 8B 42 05
	data := []byte{0x8B, 0x42, 0x05}
	ins := decodeAt(data, 0, 0x3F)
	m := ins.Op2.Mem
	require.True(t, m.HasBase && m.HasIndex)
	assert.Equal(t, "BP", m.Base)
	assert.Equal(t, "SI", m.Index)
	assert.Equal(t, SegSS, m.Segment, "BP-relative forms default to the stack segment")
}

func TestSegmentOverrideReplacesDefault(t *testing.T) {
	// es: mov ax,[bp+si+5] : 26 8B 42 05
	data := []byte{0x26, 0x8B, 0x42, 0x05}
	ins := decodeAt(data, 0, 0x3F)
	assert.Equal(t, SegES, ins.Op2.Mem.Segment)
}

func TestBranchTargetShortForward(t *testing.T) {
	// je +5 at file offset 0x100
	data := make([]byte, 0x110)
	data[0x100] = 0x74
	data[0x101] = 0x05
	ins := decodeAt(data, 0x100, 0x3F)
	assert.EqualValues(t, 0x107, ins.Op1.RelTarget)
}

func TestBranchTargetShortBackward(t *testing.T) {
	// jmp short -2 at file offset 0x200
	data := make([]byte, 0x210)
	data[0x200] = 0xEB
	data[0x201] = 0xFE // -2
	ins := decodeAt(data, 0x200, 0x3F)
	assert.EqualValues(t, 0x200, ins.Op1.RelTarget)
}

func TestOverlayTrap(t *testing.T) {
	data := []byte{0xCD, 0x3F, 0x07, 0x34, 0x12}
	ins := decodeAt(data, 0, 0x3F)
	require.Equal(t, 5, ins.Length)
	require.True(t, ins.Overlay.IsOverlay)
	assert.Equal(t, 7, ins.Overlay.Module)
	assert.EqualValues(t, 0x1234, ins.Overlay.Offset)
}

func TestNonOverlayInterruptHasNoPayload(t *testing.T) {
	data := []byte{0xCD, 0x21}
	ins := decodeAt(data, 0, 0x3F)
	require.Equal(t, 2, ins.Length)
	assert.False(t, ins.Overlay.IsOverlay)
}

func TestFarCallEncoding(t *testing.T) {
	// 9A 34 12 78 56 -> far_5678_1234
	data := []byte{0x9A, 0x34, 0x12, 0x78, 0x56}
	ins := decodeAt(data, 0, 0x3F)
	require.Equal(t, "CALLF", ins.Mnemonic)
	assert.EqualValues(t, 0x5678, ins.Op1.Far.Segment)
	assert.EqualValues(t, 0x1234, ins.Op1.Far.Offset)
}

func TestRepPrefixOnStringPrimitive(t *testing.T) {
	data := []byte{0xF3, 0xA5} // rep movsw
	ins := decodeAt(data, 0, 0x3F)
	require.Equal(t, "MOVSW", ins.Mnemonic)
	assert.Equal(t, RepUnconditional, ins.Rep)
	assert.Equal(t, 2, ins.Length)
}

func TestBCDAdjustOpcodes(t *testing.T) {
	cases := []struct {
		op   byte
		want string
	}{
		{0x27, "DAA"},
		{0x2F, "DAS"},
		{0x37, "AAA"},
		{0x3F, "AAS"},
	}
	for _, tc := range cases {
		ins := decodeAt([]byte{tc.op}, 0, 0x3F)
		assert.Equal(t, tc.want, ins.Mnemonic, "opcode %#02x", tc.op)
		assert.Equal(t, 1, ins.Length, "opcode %#02x", tc.op)
	}
}

func TestAAMAADConsumeBaseByte(t *testing.T) {
	aam := decodeAt([]byte{0xD4, 0x0A}, 0, 0x3F)
	assert.Equal(t, "AAM", aam.Mnemonic)
	assert.Equal(t, 2, aam.Length)

	aad := decodeAt([]byte{0xD5, 0x0A}, 0, 0x3F)
	assert.Equal(t, "AAD", aad.Mnemonic)
	assert.Equal(t, 2, aad.Length)
}
