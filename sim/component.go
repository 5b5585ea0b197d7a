package sim

import "sync"

// A Component is an element that is being simulated. It updates its state
// when events are triggered and exchanges messages with other components
// through ports.
type Component interface {
	Named
	Handler
	Hookable
	PortOwner

	// NotifyRecv is called when a message arrives at one of the component's
	// ports while the port's incoming buffer was empty.
	NotifyRecv(port Port)

	// NotifyPortFree is called when one of the component's ports becomes
	// available for sending again.
	NotifyPortFree(port Port)
}

// ComponentBase provides the fields and methods that other components can
// reuse.
type ComponentBase struct {
	HookableBase
	*PortOwnerBase
	sync.Mutex

	name string
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name
	c.PortOwnerBase = NewPortOwnerBase()

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
