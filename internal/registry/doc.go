// Package registry is the Gray Logic toolkit's service registry: a
// thread-safe lookup table from a capability type, optionally qualified by
// a key, to the instance that provides it.
//
// The registry replaces a full dependency-injection framework. Components
// are constructed at startup, registered once, and looked up by the code
// that needs them.
//
// # Slots
//
// Every registration occupies a slot identified by (type, key). The empty
// key is the type's unkeyed slot:
//
//	reg := registry.New()
//	_ = reg.Add(db)                                   // (*database.DB, "")
//	_ = registry.AddAs[Publisher](reg, "mqtt", pub)   // (Publisher, "mqtt")
//
//	db, err := registry.Get[*database.DB](reg)
//	pub, ok := registry.TryGetKeyed[Publisher](reg, "mqtt")
//
// A slot holds at most one instance; registering into an occupied slot
// fails with ErrDuplicateRegistration. Strict lookups fail with
// ErrServiceNotFound; the Try variants report absence as false.
//
// # Removal
//
// Remove(instance) only removes the registration if it still holds that
// exact instance, so a stale owner cannot unregister its replacement.
// RemoveKeyed removes whatever occupies the slot. Neither fails; both
// report whether anything was removed.
//
// # Lifetime
//
// New returns an owned registry that the caller passes to its consumers.
// Default returns a lazily created process-wide instance for ambient
// access; SetDefault installs a specific registry as that instance.
package registry
