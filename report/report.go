// Package report renders the completed analysis as human-readable
// text and a machine-readable symbol table, and hosts the optional
// interactive browser.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/civrecomp/dos16recomp/analyze"
)

// Summary produces the counts, largest-functions and most-called
// tables, per-overlay breakdown, and overlay-call histogram described
// by the reporting component.
func Summary(w io.Writer, result *analyze.Result, topN int, verbose bool) {
	all := result.AllFunctions()

	fmt.Fprintf(w, "functions: %d resident, %d overlay modules\n", len(result.Resident), len(result.Overlays))
	fmt.Fprintf(w, "total functions: %d\n\n", len(all))

	fmt.Fprintf(w, "largest functions:\n")
	for _, f := range topBySize(all, topN) {
		fmt.Fprintf(w, "  %-20s %6d bytes  (overlay %d)\n", f.Name, f.Size(), f.Overlay)
	}

	fmt.Fprintf(w, "\nmost-called functions:\n")
	for _, f := range topByCallers(all, topN) {
		fmt.Fprintf(w, "  %-20s %6d callers\n", f.Name, len(f.Callers))
	}

	fmt.Fprintf(w, "\nper-overlay breakdown:\n")
	fmt.Fprintf(w, "  resident: %d functions\n", len(result.Resident))
	for _, ov := range result.Overlays {
		fmt.Fprintf(w, "  overlay %02d: %d functions, %d bytes\n", ov.Index, len(ov.Functions), ov.CodeLen)
	}

	fmt.Fprintf(w, "\noverlay-call histogram:\n")
	hist := overlayCallHistogram(all)
	modules := make([]int, 0, len(hist))
	for module := range hist {
		modules = append(modules, module)
	}
	sort.Ints(modules)
	for _, module := range modules {
		fmt.Fprintf(w, "  module %02d: %d calls\n", module, hist[module])
	}

	if verbose {
		fmt.Fprintf(w, "\nfunctions (verbose):\n")
		for _, f := range all {
			fmt.Fprintf(w, "  %-20s start=%06X end=%06X size=%-6d far=%-5v category=%q callers=%d\n",
				f.Name, f.Start, f.End, f.Size(), f.Far, f.Category, len(f.Callers))
		}
	}
}

func topBySize(fns []*analyze.Function, n int) []*analyze.Function {
	sorted := append([]*analyze.Function{}, fns...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Size() > sorted[j].Size() })
	return firstN(sorted, n)
}

func topByCallers(fns []*analyze.Function, n int) []*analyze.Function {
	sorted := append([]*analyze.Function{}, fns...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i].Callers) > len(sorted[j].Callers) })
	return firstN(sorted, n)
}

func firstN(fns []*analyze.Function, n int) []*analyze.Function {
	if n <= 0 || n > len(fns) {
		n = len(fns)
	}
	return fns[:n]
}

func overlayCallHistogram(fns []*analyze.Function) map[int]int {
	hist := map[int]int{}
	for _, f := range fns {
		for _, call := range f.OverlayCalls {
			hist[call.Module]++
		}
	}
	return hist
}
