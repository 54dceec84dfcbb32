package xmlstream

import "sync"

// Element nodes recycle through a pool to keep steady-state allocation
// flat while scanning tens of millions of elements.
//
// Contract:
//   - Next hands out a subtree built from pooled nodes.
//   - After the subtree has been fully consumed the caller must hand it
//     back with Release. No references may be retained past that point.
var elemPool = sync.Pool{
	New: func() any { return new(Element) },
}

func getElement() *Element {
	return elemPool.Get().(*Element)
}

// putElement resets a single node and returns it to the pool. Slices keep
// their capacity so refills grow only rarely.
func putElement(e *Element) {
	e.Name = ""
	e.Text = ""
	e.Attrs = e.Attrs[:0]
	e.Children = e.Children[:0]
	elemPool.Put(e)
}

// Release returns a subtree's nodes to the pool. The caller must not use
// the element or any of its children afterwards.
func Release(e *Element) {
	if e == nil {
		return
	}
	for _, c := range e.Children {
		Release(c)
	}
	putElement(e)
}
