package widgets

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/goliatone/go-stache/pkg/output"
)

// State is an instance's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateAttached
	StateUpdated
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAttached:
		return "attached"
	case StateUpdated:
		return "updated"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Instance is one widget occurrence in one rendered tree. A later render
// creates a new Instance for the same position; Update hands the view over
// from the previous one.
type Instance struct {
	ctor        *Constructor
	owner       Owner
	props       Props
	view        View
	node        *html.Node
	placeholder *html.Node
	portalID    string
	state       State
}

var _ output.Widget = (*Instance)(nil)

// NewInstance returns an uninitialised instance.
func NewInstance(ctor *Constructor, owner Owner, props Props) *Instance {
	return &Instance{ctor: ctor, owner: owner, props: props}
}

// Constructor returns the instance's constructor.
func (i *Instance) Constructor() *Constructor { return i.ctor }

// Props returns the captured props.
func (i *Instance) Props() Props { return i.props }

// View returns the mounted view, or nil.
func (i *Instance) View() View { return i.view }

// State returns the lifecycle state.
func (i *Instance) State() State { return i.state }

// Node returns the widget's real platform node. For portals this is the
// node inside the portal host.
func (i *Instance) Node() *html.Node { return i.node }

// Placeholder returns the in-place node of a portal widget.
func (i *Instance) Placeholder() *html.Node { return i.placeholder }

// PortalID returns the id correlating a portal placeholder with its node.
func (i *Instance) PortalID() string { return i.portalID }

func (i *Instance) name() string {
	if i.ctor == nil {
		return "<nil>"
	}
	return i.ctor.Name
}

func (i *Instance) checkFresh() error {
	switch i.state {
	case StateUninitialized:
		return nil
	case StateDestroyed:
		return fmt.Errorf("widgets: %s: %w", i.name(), ErrDestroyed)
	default:
		return fmt.Errorf("widgets: %s: %w", i.name(), ErrInitialized)
	}
}

func (i *Instance) newView() error {
	if i.ctor == nil || i.ctor.New == nil {
		return fmt.Errorf("widgets: %s: constructor has no factory", i.name())
	}
	i.view = i.ctor.New(i.owner)
	if i.view == nil {
		return fmt.Errorf("widgets: %s: factory returned nil view", i.name())
	}
	return nil
}

// Init implements output.Widget. It mounts a new view and returns the node
// to place at the widget's position.
func (i *Instance) Init() (*html.Node, error) {
	if err := i.checkFresh(); err != nil {
		return nil, err
	}
	if err := i.newView(); err != nil {
		return nil, err
	}
	node, err := i.view.Mount(i.props)
	if err != nil {
		return nil, err
	}
	i.node = node
	i.state = StateAttached
	if i.ctor.Portal != nil {
		i.portalID, i.placeholder = i.ctor.Portal.Mount(node)
		return i.placeholder, nil
	}
	return node, nil
}

// Update implements output.Widget. prev held this position in the
// previous tree and node is the platform node currently there. When prev
// was built by the same constructor its view is handed over and updated
// with the new props; otherwise prev is destroyed and this instance is
// initialised, replacing node in place.
func (i *Instance) Update(prev output.Widget, node *html.Node) error {
	if err := i.checkFresh(); err != nil {
		return err
	}
	old, ok := prev.(*Instance)
	if !ok || old == nil || old.ctor != i.ctor || old.view == nil || old.state == StateDestroyed {
		return i.replace(prev, node)
	}

	i.view = old.view
	i.portalID = old.portalID
	i.placeholder = old.placeholder
	i.node = old.node
	if i.portalID != "" && i.ctor.Portal != nil {
		if resolved, found := i.ctor.Portal.Resolve(i.portalID); found {
			i.node = resolved
		}
		if node != nil {
			i.placeholder = node
		}
	} else if node != nil {
		i.node = node
	}

	old.retire()
	if err := i.view.Update(i.props); err != nil {
		return err
	}
	i.state = StateUpdated
	return nil
}

func (i *Instance) replace(prev output.Widget, node *html.Node) error {
	if old, ok := prev.(*Instance); ok && old == nil {
		prev = nil
	}
	if prev != nil {
		if err := prev.Destroy(); err != nil {
			return err
		}
	}
	fresh, err := i.Init()
	if err != nil {
		return err
	}
	if node != nil && fresh != nil && node != fresh && node.Parent != nil {
		if fresh.Parent != nil {
			fresh.Parent.RemoveChild(fresh)
		}
		node.Parent.InsertBefore(fresh, node)
		node.Parent.RemoveChild(node)
	}
	return nil
}

// retire ends an instance whose view was handed over without unmounting
// it.
func (i *Instance) retire() {
	i.view = nil
	i.state = StateDestroyed
}

// Destroy implements output.Widget. It unmounts the view; destroying an
// already destroyed instance is a no-op.
func (i *Instance) Destroy() error {
	if i.state == StateDestroyed {
		return nil
	}
	view := i.view
	i.view = nil
	i.state = StateDestroyed
	if i.portalID != "" && i.ctor != nil && i.ctor.Portal != nil {
		i.ctor.Portal.Remove(i.portalID)
	}
	if view == nil {
		return nil
	}
	return view.Unmount()
}

// Attach adopts server-rendered node without a full render. Views
// implementing Hydrator adopt node as is; others are mounted and their
// node replaces node in place.
func (i *Instance) Attach(node *html.Node) error {
	if err := i.checkFresh(); err != nil {
		return err
	}
	if err := i.newView(); err != nil {
		return err
	}
	if hydrator, ok := i.view.(Hydrator); ok {
		if err := hydrator.Hydrate(node, i.props); err != nil {
			return err
		}
		i.node = node
		i.state = StateAttached
		return nil
	}
	mounted, err := i.view.Mount(i.props)
	if err != nil {
		return err
	}
	if node != nil && mounted != nil && node.Parent != nil {
		node.Parent.InsertBefore(mounted, node)
		node.Parent.RemoveChild(node)
	}
	i.node = mounted
	i.state = StateAttached
	return nil
}
