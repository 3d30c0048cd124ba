package output

import (
	"github.com/goliatone/go-stache/internal/htmlrules"
	"github.com/goliatone/go-stache/pkg/diag"
)

// Piece is a child awaiting materialisation: either text or a finished
// node.
type Piece[N any] struct {
	Text   string
	Node   N
	IsText bool
}

// Materializer turns stack entries into backend nodes.
type Materializer[N any] interface {
	Element(tag string, attrs Attrs, children []N) (N, error)
	Text(parent, text string) N
}

type openElement[N any] struct {
	tag      string
	attrs    Attrs
	handle   Handle
	children []Piece[N]
}

// Stack is the open-element stack shared by the tree backends. Children
// are shaped and materialised when their parent closes.
type Stack[N any] struct {
	reporter *diag.Reporter
	build    Materializer[N]
	open     []openElement[N]
	root     []Piece[N]
	next     Handle
}

// NewStack returns an empty stack.
func NewStack[N any](build Materializer[N], reporter *diag.Reporter) *Stack[N] {
	return &Stack[N]{build: build, reporter: reporter}
}

// SetReporter changes where balance corrections are reported.
func (s *Stack[N]) SetReporter(reporter *diag.Reporter) {
	s.reporter = reporter
}

// Open pushes an element.
func (s *Stack[N]) Open(tag string, attrs Attrs) Handle {
	s.next++
	s.open = append(s.open, openElement[N]{tag: tag, attrs: attrs, handle: s.next})
	return s.next
}

// Close pops the element opened with h. Elements opened after it are
// closed first with a diagnostic; an unknown handle is reported and
// ignored.
func (s *Stack[N]) Close(h Handle) error {
	idx := -1
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i].handle == h {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.reporter.Warn(diag.CodeUnbalancedOutput, "close of unknown element handle %d ignored", h)
	}
	for len(s.open)-1 > idx {
		if err := s.reporter.Warn(diag.CodeUnbalancedOutput, "<%s> left open, closed with its parent", s.open[len(s.open)-1].tag); err != nil {
			return err
		}
		if err := s.pop(); err != nil {
			return err
		}
	}
	return s.pop()
}

func (s *Stack[N]) pop() error {
	top := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	children := s.materialize(top.tag, Shape(top.tag, top.children))
	node, err := s.build.Element(top.tag, top.attrs, children)
	if err != nil {
		return err
	}
	s.Append(node)
	return nil
}

func (s *Stack[N]) materialize(parent string, pieces []Piece[N]) []N {
	if len(pieces) == 0 {
		return nil
	}
	out := make([]N, len(pieces))
	for i, piece := range pieces {
		if piece.IsText {
			out[i] = s.build.Text(parent, piece.Text)
			continue
		}
		out[i] = piece.Node
	}
	return out
}

func (s *Stack[N]) target() *[]Piece[N] {
	if n := len(s.open); n > 0 {
		return &s.open[n-1].children
	}
	return &s.root
}

// Text appends character data to the current element. Inside script and
// style the data is escaped here, since materializers write raw-text
// children verbatim.
func (s *Stack[N]) Text(text string) {
	if htmlrules.IsRawText(s.CurrentTag()) {
		text = Escape(text)
	}
	s.RawText(text)
}

// RawText appends character data that is already safe for the current
// element, such as the literal body of a script.
func (s *Stack[N]) RawText(text string) {
	t := s.target()
	*t = append(*t, Piece[N]{Text: text, IsText: true})
}

// Append adds a finished node to the current element.
func (s *Stack[N]) Append(node N) {
	t := s.target()
	*t = append(*t, Piece[N]{Node: node})
}

// Depth returns the number of open elements.
func (s *Stack[N]) Depth() int {
	return len(s.open)
}

// CurrentTag returns the innermost open tag, or "".
func (s *Stack[N]) CurrentTag() string {
	if n := len(s.open); n > 0 {
		return s.open[n-1].tag
	}
	return ""
}

// Output closes anything still open, with a diagnostic, and returns the
// shaped root nodes. The stack is empty afterwards.
func (s *Stack[N]) Output() ([]N, error) {
	for len(s.open) > 0 {
		if err := s.reporter.Warn(diag.CodeUnbalancedOutput, "<%s> still open at end of output", s.open[len(s.open)-1].tag); err != nil {
			return nil, err
		}
		if err := s.pop(); err != nil {
			return nil, err
		}
	}
	out := s.materialize("", Shape("", s.root))
	s.root = s.root[:0]
	return out, nil
}

// Clear drops all state so the stack can be reused.
func (s *Stack[N]) Clear() {
	for i := range s.open {
		s.open[i] = openElement[N]{}
	}
	s.open = s.open[:0]
	for i := range s.root {
		s.root[i] = Piece[N]{}
	}
	s.root = s.root[:0]
	s.next = 0
}
