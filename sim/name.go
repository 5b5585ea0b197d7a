package sim

import (
	"fmt"
	"regexp"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

var namePattern = regexp.MustCompile(
	`^[a-zA-Z0-9_:]+(\.[a-zA-Z0-9_:]+|\[[0-9]+\])*$`)

// NameMustBeValid panics if the name is not an acceptable element name.
// Names are dot-separated tokens, where each token may carry an index suffix
// (e.g., "Controller.ResourceAPort" or "Fabric.Queue[2]").
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	if !namePattern.MatchString(name) {
		panic(fmt.Sprintf("invalid name %q", name))
	}
}
