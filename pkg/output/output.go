// Package output defines the builder contract every render target
// implements, plus the open-element stack and tree shaping the concrete
// backends share.
package output

import (
	"golang.org/x/net/html"
)

// Handle identifies an element opened on a builder.
type Handle uint64

// ObjectKind says how CreateObject treats its value.
type ObjectKind int

const (
	// ObjectText is character data; backends escape it as needed.
	ObjectText ObjectKind = iota
	// ObjectMarkup is unescaped markup. Tree backends parse it.
	ObjectMarkup
	// ObjectFragment is a pre-rendered Fragment spliced verbatim.
	ObjectFragment
	// ObjectWidget is a Widget mounted at the current position.
	ObjectWidget
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectText:
		return "text"
	case ObjectMarkup:
		return "markup"
	case ObjectFragment:
		return "fragment"
	case ObjectWidget:
		return "widget"
	default:
		return "unknown"
	}
}

// ObjectOptions qualifies a CreateObject call.
type ObjectOptions struct {
	Kind ObjectKind
}

// Builder is the contract the walker emits into. Calls must be balanced:
// every OpenElement is matched by one CloseElement with its handle.
type Builder interface {
	OpenElement(tag string, attrs Attrs) (Handle, error)
	CloseElement(h Handle) error
	CreateObject(value any, opts ObjectOptions) error
	CreateComment(text string) error
	Clear()
}

// Backend is a Builder with a typed result.
type Backend[T any] interface {
	Builder
	Output() (T, error)
}

// Fragment is output rendered earlier that can be replayed into another
// builder, such as a nested template's tree.
type Fragment interface {
	Replay(b Builder) error
}

// Widget is an embedded component as seen by builders. Init mounts it and
// returns its platform node. Update hands over from the instance that held
// the same position in the previous tree. Destroy is terminal.
type Widget interface {
	Init() (*html.Node, error)
	Update(prev Widget, node *html.Node) error
	Destroy() error
}
