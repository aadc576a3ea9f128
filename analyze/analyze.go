// Package analyze sweeps a decoded instruction stream to find function
// boundaries, track call targets, and build the static call graph.
package analyze

import (
	"fmt"

	"github.com/civrecomp/dos16recomp/decode"
)

// CallTarget is an outgoing far call target: an absolute segment and
// offset, not yet resolvable to a function within this image.
type CallTarget struct {
	Segment uint16
	Offset  uint16
}

// OverlayCall is an outgoing overlay-trap target: module index and
// entry offset within that module.
type OverlayCall struct {
	Module int
	Offset uint16
}

// Function is one detected routine: its byte range, synthesized name,
// and the edges discovered by the sweep.
type Function struct {
	Name      string
	Start     int
	End       int // exclusive
	FrameSize int
	Far       bool
	Overlay   int // 0 for resident, else the 1-based overlay module index

	NearCalls    []int
	FarCalls     []CallTarget
	OverlayCalls []OverlayCall
	Callers      []string

	InstructionCount int
	Category         string
}

// Size is the byte length of the function's range.
func (f Function) Size() int { return f.End - f.Start }

// Range and SetCategory satisfy strscan.Categorizable.
func (f *Function) Range() (start, end int) { return f.Start, f.End }
func (f *Function) SetCategory(cat string)  { f.Category = cat }

// OverlayModule mirrors a discovered container overlay plus the
// functions swept from its code range.
type OverlayModule struct {
	Index      int
	HeaderFile int
	CodeStart  int
	CodeLen    int
	Functions  []*Function
}

// Result is the complete output of the analyzer: the resident
// function list and every overlay module's function list, plus the
// call graph filled in by ResolveCallGraph.
type Result struct {
	Resident []*Function
	Overlays []*OverlayModule
}

// isProloguePush matches "push bp"; isMovBPSP matches "mov bp,sp"; both
// must appear back to back for a function start to be recognized.
func isProloguePush(ins decode.Instruction) bool {
	return ins.Mnemonic == "PUSH" && ins.Op1.Kind == decode.OperandReg16 && ins.Op1.Reg == decode.RegBP
}

func isMovBPSP(ins decode.Instruction) bool {
	return ins.Mnemonic == "MOV" &&
		ins.Op1.Kind == decode.OperandReg16 && ins.Op1.Reg == decode.RegBP &&
		ins.Op2.Kind == decode.OperandReg16 && ins.Op2.Reg == decode.RegSP
}

func isSubSPImm(ins decode.Instruction) (int, bool) {
	if ins.Mnemonic != "SUB" {
		return 0, false
	}
	if ins.Op1.Kind != decode.OperandReg16 || ins.Op1.Reg != decode.RegSP {
		return 0, false
	}
	switch ins.Op2.Kind {
	case decode.OperandImm8:
		return int(ins.Op2.Imm8), true
	case decode.OperandImm16:
		return int(ins.Op2.Imm16), true
	}
	return 0, false
}

func isFarReturn(ins decode.Instruction) bool {
	return ins.Mnemonic == "RETF"
}

// nameFor synthesizes a function name from its containing region and
// starting file offset: res_<6-hex> for resident, ovlNN_<6-hex> for an
// overlay module's function.
func nameFor(overlay int, start int) string {
	if overlay == 0 {
		return fmt.Sprintf("res_%06X", start)
	}
	return fmt.Sprintf("ovl%02d_%06X", overlay, start)
}

// SweepRegion decodes and analyzes one code region (the resident
// window or a single overlay's code range), returning the functions
// found within it in start-offset order. Bytes before the first
// detected prologue are not user code and are dropped, per the
// boundary rule; the region's end becomes the last function's end.
func SweepRegion(data []byte, overlayVector byte, start, end int, overlay int) []*Function {
	d := decode.NewDecoder(data, overlayVector)
	insns := d.DecodeRange(start, end)

	var funcs []*Function
	var cur *Function
	var pendingPush bool
	pushAt := -1

	closeCurrent := func(at int) {
		if cur != nil {
			cur.End = at
		}
	}

	for i := 0; i < len(insns); i++ {
		ins := insns[i]

		if isProloguePush(ins) {
			pendingPush = true
			pushAt = ins.Offset
			continue
		}
		if pendingPush {
			pendingPush = false
			if isMovBPSP(ins) {
				closeCurrent(pushAt)
				cur = &Function{
					Name:    nameFor(overlay, pushAt),
					Start:   pushAt,
					Overlay: overlay,
				}
				funcs = append(funcs, cur)
				if i+1 < len(insns) {
					if size, ok := isSubSPImm(insns[i+1]); ok {
						cur.FrameSize = size
					}
				}
				continue
			}
			// Not actually a prologue; fall through and account for
			// the push as an ordinary instruction of the current
			// function (or pre-function prelude, dropped below).
			if cur != nil {
				cur.InstructionCount++
			}
		}

		if cur == nil {
			continue // prelude before the first true function start
		}

		cur.InstructionCount++
		switch {
		case ins.Mnemonic == "CALL" && ins.Op1.Kind == decode.OperandRel16:
			cur.NearCalls = append(cur.NearCalls, int(ins.Op1.RelTarget))
		case ins.Mnemonic == "CALLF" && ins.Op1.Kind == decode.OperandFarPtr:
			cur.FarCalls = append(cur.FarCalls, CallTarget{Segment: ins.Op1.Far.Segment, Offset: ins.Op1.Far.Offset})
		case ins.Overlay.IsOverlay:
			cur.OverlayCalls = append(cur.OverlayCalls, OverlayCall{Module: ins.Overlay.Module, Offset: ins.Overlay.Offset})
		case isFarReturn(ins):
			cur.Far = true
		}
	}
	closeCurrent(end)
	return funcs
}

// ResolveCallGraph runs the second pass: for every near-call target
// recorded on any function, find the function whose half-open range
// contains it and append the caller's name to its callers list,
// deduplicated. Far and overlay calls are left unresolved here; the
// lifter resolves them independently when emitting call statements.
func ResolveCallGraph(result *Result) {
	allByRegion := make(map[int][]*Function)
	allByRegion[0] = result.Resident
	for _, ov := range result.Overlays {
		allByRegion[ov.Index] = ov.Functions
	}

	findContaining := func(overlay int, target int) *Function {
		for _, f := range allByRegion[overlay] {
			if target >= f.Start && target < f.End {
				return f
			}
		}
		return nil
	}

	addCaller := func(target *Function, callerName string) {
		for _, existing := range target.Callers {
			if existing == callerName {
				return
			}
		}
		target.Callers = append(target.Callers, callerName)
	}

	var resolveFns func(fns []*Function, overlay int)
	resolveFns = func(fns []*Function, overlay int) {
		for _, f := range fns {
			for _, target := range f.NearCalls {
				if callee := findContaining(overlay, target); callee != nil {
					addCaller(callee, f.Name)
				}
				// calls landing outside any known function range are
				// silently dropped from the graph, per error policy.
			}
		}
	}

	resolveFns(result.Resident, 0)
	for _, ov := range result.Overlays {
		resolveFns(ov.Functions, ov.Index)
	}
}
