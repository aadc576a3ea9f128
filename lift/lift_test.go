package lift

import (
	"strings"
	"testing"
)

func TestLiftPrologue(t *testing.T) {
	// push bp; mov bp,sp; sub sp,0x10; mov ax,[bp-4]; pop bp; ret
	data := []byte{
		0x55,
		0x8B, 0xEC,
		0x83, 0xEC, 0x10,
		0x8B, 0x46, 0xFC,
		0x5D,
		0xC3,
	}
	out := Lift(FunctionInfo{Name: "res_000000", Start: 0, End: len(data)}, data, 0x3F)

	if !strings.Contains(out, "push16(cpu, cpu.bp)") {
		t.Fatalf("missing frame-pointer push:\n%s", out)
	}
	if !strings.Contains(out, "cpu.bp = cpu.sp") {
		t.Fatalf("missing bp=sp copy:\n%s", out)
	}
	if !strings.Contains(out, "cpu.sp = flags_sub16(cpu, cpu.sp, 0x0010)") {
		t.Fatalf("missing sp-0x10 via flags_sub16:\n%s", out)
	}
	if !strings.Contains(out, "mem_read16(cpu, cpu.ss, cpu.bp-0x4)") {
		t.Fatalf("expected stack-segment default for [bp-4] read, got:\n%s", out)
	}
}

func TestLiftRepMovsw(t *testing.T) {
	data := []byte{0xF3, 0xA5} // rep movsw
	out := Lift(FunctionInfo{Name: "res_000000", Start: 0, End: len(data)}, data, 0x3F)

	for _, want := range []string{
		"for cpu.cx != 0 {",
		"cpu.cx--",
		"mem_write16(cpu, cpu.es, cpu.di, mem_read16(cpu, cpu.ds, cpu.si))",
		"cpu.si += uint16(step)",
		"cpu.di += uint16(step)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLiftCompareAndBranch(t *testing.T) {
	// cmp ax,bx; je +.. ; jmp +..
	// je target must equal 0x10, jmp target 0x20 relative to this function's
	// own address space, so place the two labels accordingly.
	data := make([]byte, 0x30)
	data[0] = 0x3B // CMP AX, r/m16 (reg form, ax,bx) -> 3B C3
	data[1] = 0xC3
	data[2] = 0x74 // JE rel8
	data[3] = byte(0x10 - 4)
	data[4] = 0xEB // JMP short rel8
	data[5] = byte(0x20 - 6)

	out := Lift(FunctionInfo{Name: "res_000000", Start: 0, End: 0x30}, data, 0x3F)

	if !strings.Contains(out, "flags_cmp16(cpu, cpu.ax, cpu.bx)") {
		t.Fatalf("missing compare:\n%s", out)
	}
	if !strings.Contains(out, "if cc_e(cpu) {") || !strings.Contains(out, "goto L_0010") {
		t.Fatalf("missing conditional branch to L_0010:\n%s", out)
	}
	if !strings.Contains(out, "goto L_0020") {
		t.Fatalf("missing unconditional jump to L_0020:\n%s", out)
	}
	if !strings.Contains(out, "L_0010:") || !strings.Contains(out, "L_0020:") {
		t.Fatalf("expected both labels declared:\n%s", out)
	}
}

func TestLiftNearCall(t *testing.T) {
	// call rel16 such that function_start(0)+relative = 0x4A20
	data := make([]byte, 3)
	data[0] = 0xE8
	delta := 0x4A20 - 3
	data[1] = byte(delta)
	data[2] = byte(delta >> 8)

	out := Lift(FunctionInfo{Name: "res_000000", Start: 0, End: 3}, data, 0x3F)
	if !strings.Contains(out, "res_004A20(cpu)") {
		t.Fatalf("expected call to res_004A20, got:\n%s", out)
	}
}

func TestLiftFarCall(t *testing.T) {
	data := []byte{0x9A, 0x34, 0x12, 0x78, 0x56}
	out := Lift(FunctionInfo{Name: "res_000000", Start: 0, End: len(data)}, data, 0x3F)
	if !strings.Contains(out, "far_5678_1234(cpu)") {
		t.Fatalf("expected call to far_5678_1234, got:\n%s", out)
	}
}
