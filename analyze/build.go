package analyze

import (
	"github.com/civrecomp/dos16recomp/container"
)

// Build sweeps the resident window and every overlay module of img,
// then resolves the inter-function call graph. The returned Result is
// immutable afterward except for the Category field, which the string
// categorizer fills in as a later, independent pass.
func Build(img *container.Image, overlayVector byte) *Result {
	result := &Result{}

	result.Resident = SweepRegion(img.Data, overlayVector, img.Resident.Start, img.Resident.End, 0)

	for _, ov := range img.Overlays {
		funcs := SweepRegion(img.Data, overlayVector, ov.Code.Start, ov.Code.End, ov.Index)
		result.Overlays = append(result.Overlays, &OverlayModule{
			Index:      ov.Index,
			HeaderFile: ov.HeaderFile,
			CodeStart:  ov.Code.Start,
			CodeLen:    ov.Code.Len(),
			Functions:  funcs,
		})
	}

	ResolveCallGraph(result)
	return result
}

// AllFunctions returns every function across the resident region and
// every overlay, in region order.
func (r *Result) AllFunctions() []*Function {
	all := make([]*Function, 0, len(r.Resident))
	all = append(all, r.Resident...)
	for _, ov := range r.Overlays {
		all = append(all, ov.Functions...)
	}
	return all
}
