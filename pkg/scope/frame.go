// Package scope resolves key paths against a chain of context frames. The
// chain is singly linked from the innermost frame outwards; iteration
// pushes one frame per element and marks it as a loop boundary.
package scope

import "github.com/goliatone/go-stache/pkg/ast"

// Frame is one link of the context chain.
type Frame struct {
	Value    any
	Parent   *Frame
	Iterator bool
	Index    int
	// Name is the section key that pushed the frame.
	Name string
	// Root marks an owner boundary; widget scope capture stops here.
	Root bool

	adapter Adapter
}

// NewRoot starts a chain at value. A nil adapter uses DefaultAdapter.
func NewRoot(value any, adapter Adapter) *Frame {
	if adapter == nil {
		adapter = DefaultAdapter()
	}
	f := &Frame{Root: true, adapter: adapter}
	f.Value = adapter.Initialize(value, nil)
	return f
}

// Adapter returns the adapter shared by the chain.
func (f *Frame) Adapter() Adapter {
	if f == nil || f.adapter == nil {
		return DefaultAdapter()
	}
	return f.adapter
}

// Push returns a child frame for an object section named name.
func (f *Frame) Push(value any, name string) *Frame {
	child := &Frame{Parent: f, Name: name, adapter: f.Adapter()}
	child.Value = child.adapter.Initialize(value, f)
	return child
}

// PushRoot returns a child frame that acts as an owner boundary.
func (f *Frame) PushRoot(value any) *Frame {
	child := f.Push(value, "")
	child.Root = true
	return child
}

// PushIterator returns the frame for element index of the collection
// rendered by section name.
func (f *Frame) PushIterator(value any, name string, index int) *Frame {
	child := f.Push(value, name)
	child.Iterator = true
	child.Index = index
	return child
}

// Lookup searches name from f outwards and returns the first hit.
func (f *Frame) Lookup(name string) (any, bool) {
	for frame := f; frame != nil; frame = frame.Parent {
		if v, ok := frame.Adapter().LookupValue(frame.Value, name); ok {
			return v, true
		}
	}
	return nil, false
}

// Descend walks segments from value without falling back to outer frames.
func (f *Frame) Descend(value any, segments []string) (any, bool) {
	adapter := f.Adapter()
	for _, segment := range segments {
		next, ok := adapter.LookupValue(value, segment)
		if !ok {
			return nil, false
		}
		value = next
	}
	return value, true
}

// NearestIterator returns the closest iteration frame, optionally
// restricted to the one pushed by section name.
func (f *Frame) NearestIterator(name string) *Frame {
	for frame := f; frame != nil; frame = frame.Parent {
		if frame.Iterator && (name == "" || frame.Name == name) {
			return frame
		}
	}
	return nil
}

// Resolve evaluates path against the chain. The head segment is searched
// outwards; the remaining segments descend from the value found.
func (f *Frame) Resolve(path ast.KeyPath) (any, bool) {
	if f == nil {
		return nil, false
	}
	start := f
	if path.Ancestor != "" {
		start = f.NearestIterator(path.Ancestor)
		if start == nil {
			return nil, false
		}
	}

	switch {
	case path.Index:
		it := start.NearestIterator("")
		if it == nil {
			return nil, false
		}
		return it.Index, true
	case path.Current:
		return start.Value, true
	case len(path.Segments) == 0:
		return nil, false
	}

	head, ok := start.Lookup(path.Segments[0])
	if !ok {
		return nil, false
	}
	return start.Descend(head, path.Segments[1:])
}
