package reporters

import (
	"go.uber.org/dig"
)

// RegisterProviders registers the reporter registry with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(func() *Registry {
		reg := NewRegistry()
		reg.Register(NewTableReporter())
		reg.Register(NewJSONReporter())
		reg.Register(NewCSVReporter())
		reg.Register(NewMarkdownReporter())
		return reg
	})
}
