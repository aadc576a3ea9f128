package report

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/civrecomp/dos16recomp/analyze"
	"github.com/civrecomp/dos16recomp/lift"
)

// Browser is a read-only three-pane terminal view over a completed
// analysis: a function list, the selected function's lifted text, and
// its caller/callee edges. It opens no files and mutates no analysis
// state.
type Browser struct {
	app    *tview.Application
	result *analyze.Result
	data   []byte
	vector byte

	functionList *tview.List
	detailView   *tview.TextView
	edgesView    *tview.TextView

	functions []*analyze.Function
}

// NewBrowser builds the browser over an already-completed analysis.
func NewBrowser(result *analyze.Result, data []byte, overlayVector byte) *Browser {
	b := &Browser{
		app:       tview.NewApplication(),
		result:    result,
		data:      data,
		vector:    overlayVector,
		functions: result.AllFunctions(),
	}
	b.build()
	return b
}

func (b *Browser) build() {
	b.functionList = tview.NewList().ShowSecondaryText(false)
	b.functionList.SetBorder(true).SetTitle(" Functions ")
	for _, f := range b.functions {
		b.functionList.AddItem(f.Name, "", 0, nil)
	}

	b.detailView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.detailView.SetBorder(true).SetTitle(" Lifted routine ")

	b.edgesView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.edgesView.SetBorder(true).SetTitle(" Callers / callees ")

	b.functionList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		b.showFunction(index)
	})

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.detailView, 0, 3, false).
		AddItem(b.edgesView, 0, 1, false)

	layout := tview.NewFlex().
		AddItem(b.functionList, 32, 0, true).
		AddItem(right, 0, 1, false)

	b.app.SetRoot(layout, true).SetFocus(b.functionList)
	b.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			b.app.Stop()
			return nil
		}
		return event
	})

	if len(b.functions) > 0 {
		b.showFunction(0)
	}
}

func (b *Browser) showFunction(index int) {
	if index < 0 || index >= len(b.functions) {
		return
	}
	f := b.functions[index]

	lifted := lift.Lift(lift.FunctionInfo{Name: f.Name, Start: f.Start, End: f.End}, b.data, b.vector)
	b.detailView.SetText(tview.Escape(lifted))

	var edges strings.Builder
	fmt.Fprintf(&edges, "callers (%d):\n", len(f.Callers))
	for _, c := range f.Callers {
		fmt.Fprintf(&edges, "  %s\n", c)
	}
	fmt.Fprintf(&edges, "\nnear calls (%d):\n", len(f.NearCalls))
	for _, target := range f.NearCalls {
		fmt.Fprintf(&edges, "  -> %06X\n", target)
	}
	fmt.Fprintf(&edges, "\noverlay calls (%d):\n", len(f.OverlayCalls))
	for _, c := range f.OverlayCalls {
		fmt.Fprintf(&edges, "  -> ovl%02d_%04X\n", c.Module, c.Offset)
	}
	b.edgesView.SetText(tview.Escape(edges.String()))
}

// Run blocks until the user quits the browser.
func (b *Browser) Run() error {
	return b.app.Run()
}
