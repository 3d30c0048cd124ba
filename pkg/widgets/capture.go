package widgets

import (
	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/scope"
)

// CaptureFrame walks outwards from f to the nearest owner root or
// iteration frame.
func CaptureFrame(f *scope.Frame) *scope.Frame {
	for frame := f; frame != nil; frame = frame.Parent {
		if frame.Root || frame.Iterator {
			return frame
		}
		if frame.Parent == nil {
			return frame
		}
	}
	return f
}

// Capture resolves bindings from the capture frame of f. Missing values
// are left out.
func Capture(f *scope.Frame, bindings []ast.Binding) Props {
	props := make(Props, len(bindings))
	start := CaptureFrame(f)
	if start == nil {
		return props
	}
	for _, binding := range bindings {
		if v, ok := start.Resolve(binding.Source); ok {
			props[binding.Alias] = v
		}
	}
	return props
}
