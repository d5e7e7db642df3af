package resources

import (
	"github.com/opmodel/converge/internal/component"
)

// GroupType bundles the sub-components listed in a definition.
var GroupType = component.Type{
	Name:        "group",
	Description: "container for nested components",
	New: func(attrs component.Attributes) (component.Component, error) {
		g := &Group{}
		if err := attrs.Decode(g); err != nil {
			return nil, err
		}
		if g.Label != "" {
			if err := g.SetNamevar("name", g.Label); err != nil {
				return nil, err
			}
		}
		return g, nil
	},
}

// Group has no state of its own. Its optional name shows up in breadcrumbs.
type Group struct {
	component.Base

	Label string `attr:"name"`
}
