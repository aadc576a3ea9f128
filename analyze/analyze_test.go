package analyze

import "testing"

func TestFunctionBoundaryDetection(t *testing.T) {
	// Two functions back to back, each: push bp; mov bp,sp; [sub sp,N]; ...; ret
	data := make([]byte, 0x1020)
	seq1 := []byte{0x55, 0x8B, 0xEC, 0x83, 0xEC, 0x10, 0xC3} // frame 0x10
	seq2 := []byte{0x55, 0x8B, 0xEC, 0xC3}                   // frame 0
	copy(data[0x1000:], seq1)
	copy(data[0x1000+len(seq1):], seq2)
	end := 0x1000 + len(seq1) + len(seq2)

	funcs := SweepRegion(data, 0x3F, 0x1000, end, 0)
	if len(funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(funcs))
	}
	if funcs[0].FrameSize != 0x10 {
		t.Fatalf("func0 frame size = %#x, want 0x10", funcs[0].FrameSize)
	}
	if funcs[1].FrameSize != 0 {
		t.Fatalf("func1 frame size = %d, want 0", funcs[1].FrameSize)
	}
	if funcs[0].End != funcs[1].Start {
		t.Fatalf("func0.End %#x != func1.Start %#x", funcs[0].End, funcs[1].Start)
	}
	if funcs[1].End != end {
		t.Fatalf("func1.End %#x != region end %#x", funcs[1].End, end)
	}
}

func TestPreludeBeforeFirstPrologueDropped(t *testing.T) {
	data := []byte{
		0x90,                               // nop prelude
		0x55, 0x8B, 0xEC, 0xC3,             // one function
	}
	funcs := SweepRegion(data, 0x3F, 0, len(data), 0)
	if len(funcs) != 1 {
		t.Fatalf("got %d functions, want 1", len(funcs))
	}
	if funcs[0].Start != 1 {
		t.Fatalf("function start = %d, want 1 (prelude dropped)", funcs[0].Start)
	}
}

func TestCallGraphDedupesRepeatedCaller(t *testing.T) {
	// F at 0: push bp; mov bp,sp; call rel16 to G; call rel16 to G again; ret
	// G at after F.
	fBody := []byte{0x55, 0x8B, 0xEC}
	// two calls to G, patched once G's address is known
	callLen := 3 // E8 + rel16
	gOffset := len(fBody) + 2*callLen + 1 // + F's trailing ret
	call := func(target int, from int) []byte {
		next := from + 3
		delta := target - next
		return []byte{0xE8, byte(delta), byte(delta >> 8)}
	}
	data := append([]byte{}, fBody...)
	data = append(data, call(gOffset, len(data))...)
	data = append(data, call(gOffset, len(data))...)
	data = append(data, 0xC3) // ret
	gBody := []byte{0x55, 0x8B, 0xEC, 0xC3}
	data = append(data, gBody...)

	funcs := SweepRegion(data, 0x3F, 0, len(data), 0)
	if len(funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(funcs))
	}
	result := &Result{Resident: funcs}
	ResolveCallGraph(result)

	g := funcs[1]
	count := 0
	for _, caller := range g.Callers {
		if caller == funcs[0].Name {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("caller recorded %d times, want exactly once (dedup)", count)
	}
}
