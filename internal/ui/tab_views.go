package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// tabRoot is shared by all tab view structs; it holds the Fyne container and
// provides a common CanvasObject() accessor.
type tabRoot struct {
	root *fyne.Container
}

func newTabRoot() tabRoot {
	return tabRoot{root: container.NewMax()}
}

func (t *tabRoot) CanvasObject() fyne.CanvasObject {
	return t.root
}

// viewLayoutState is the user-adjusted layout of a view tree, in tree order.
type viewLayoutState struct {
	scrollOffsets []fyne.Position
	splitOffsets  []float64
}

func captureViewLayoutState(obj fyne.CanvasObject) viewLayoutState {
	var state viewLayoutState
	walkLayout(obj, func(o fyne.CanvasObject) {
		switch o := o.(type) {
		case *container.Scroll:
			state.scrollOffsets = append(state.scrollOffsets, o.Offset)
		case *container.Split:
			state.splitOffsets = append(state.splitOffsets, o.Offset)
		}
	})
	return state
}

func applyViewLayoutState(obj fyne.CanvasObject, state viewLayoutState) {
	scrollIdx, splitIdx := 0, 0
	walkLayout(obj, func(o fyne.CanvasObject) {
		switch o := o.(type) {
		case *container.Scroll:
			if scrollIdx < len(state.scrollOffsets) {
				o.Offset = state.scrollOffsets[scrollIdx]
			}
			scrollIdx++
		case *container.Split:
			if splitIdx < len(state.splitOffsets) {
				o.Offset = state.splitOffsets[splitIdx]
			}
			splitIdx++
		}
	})
}

// walkLayout visits obj and the containers below it, parents first.
func walkLayout(obj fyne.CanvasObject, visit func(fyne.CanvasObject)) {
	if obj == nil {
		return
	}
	visit(obj)
	switch o := obj.(type) {
	case *container.Scroll:
		walkLayout(o.Content, visit)
	case *container.Split:
		walkLayout(o.Leading, visit)
		walkLayout(o.Trailing, visit)
	case *fyne.Container:
		for _, child := range o.Objects {
			walkLayout(child, visit)
		}
	}
}

// replaceViewContentPreservingLayout swaps root's content and carries the
// scroll and split offsets over to the new tree.
func replaceViewContentPreservingLayout(root *fyne.Container, next fyne.CanvasObject) {
	if root == nil {
		return
	}

	var state viewLayoutState
	if len(root.Objects) > 0 {
		state = captureViewLayoutState(root.Objects[0])
	}

	root.Objects = []fyne.CanvasObject{next}
	applyViewLayoutState(next, state)
	root.Refresh()
}
