package registry

import "sync"

// Process-wide registry and its initialisation guard.
var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, creating an empty one on
// first use.
//
// Prefer passing an explicit *Registry; Default exists for code that has
// no other way to reach the services wired at startup.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// SetDefault installs r as the process-wide registry.
// Must be called before any call to Default to take effect; returns
// whether r was installed.
func SetDefault(r *Registry) bool {
	installed := false
	defaultOnce.Do(func() {
		defaultRegistry = r
		installed = true
	})
	return installed
}

// resetDefault clears the process-wide registry. Not thread-safe; tests only.
func resetDefault() {
	defaultOnce = sync.Once{}
	defaultRegistry = nil
}
