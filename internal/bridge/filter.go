package bridge

import "github.com/okian/profilebridge/internal/domain/model"

// Filter decides whether an outbound event reaches the host.
type Filter interface {
	Allow(name string, provider model.Provider) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(name string, provider model.Provider) bool

// Allow calls f.
func (f FilterFunc) Allow(name string, provider model.Provider) bool { return f(name, provider) }

// ExcludeProviders rejects events caused by any of the given providers.
// Facebook is excluded by default: its SDK delivers the same events to the
// host on its own path.
func ExcludeProviders(providers ...model.Provider) Filter {
	excluded := make(map[model.Provider]struct{}, len(providers))
	for _, p := range providers {
		excluded[p] = struct{}{}
	}
	return FilterFunc(func(_ string, p model.Provider) bool {
		_, drop := excluded[p]
		return !drop
	})
}

// AllowAll passes every event.
func AllowAll() Filter {
	return FilterFunc(func(string, model.Provider) bool { return true })
}
